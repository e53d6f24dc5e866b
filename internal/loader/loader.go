// Package loader fetches entities together with their to-many associations.
//
// Loading two bag relations with a single join multiplies rows: a parent with
// three amenities and two categories comes back six times. The loader avoids
// that by fetching the parents first and then running one independent query
// per association, merging each result back onto the parents in the order the
// caller asked for.
//
// # Usage
//
//	l := loader.New(db, func(p *entities.Property) uint { return p.ID })
//	props, err := l.LoadMany(ctx, []uint{7, 3, 9}, amenities, categories)
//
// Every Load* call runs in one transaction so the base rows and the
// association rows come from the same snapshot.
package loader

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/rentals/internal/paging"
)

// Loader loads batches of P with their associations.
type Loader[P any] struct {
	db          *gorm.DB
	idOf        func(*P) uint
	scope       func(*gorm.DB) *gorm.DB
	sortColumns map[string]string
}

// Option configures a Loader.
type Option[P any] func(*Loader[P])

// WithBaseScope applies fn to every base query, e.g. to preload
// single-valued relations.
func WithBaseScope[P any](fn func(*gorm.DB) *gorm.DB) Option[P] {
	return func(l *Loader[P]) {
		l.scope = fn
	}
}

// WithSortColumns maps API sort fields to columns for LoadPage.
func WithSortColumns[P any](cols map[string]string) Option[P] {
	return func(l *Loader[P]) {
		l.sortColumns = cols
	}
}

// New creates a loader. idOf must return the primary key of P.
func New[P any](db *gorm.DB, idOf func(*P) uint, opts ...Option[P]) *Loader[P] {
	l := &Loader[P]{
		db:          db,
		idOf:        idOf,
		scope:       func(tx *gorm.DB) *gorm.DB { return tx },
		sortColumns: map[string]string{"id": "id"},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadOne fetches a single entity and the given associations.
// Returns ErrNotFound when the entity does not exist.
func (l *Loader[P]) LoadOne(ctx context.Context, id uint, specs ...Spec[P]) (*P, error) {
	var out *P
	err := l.read(ctx, func(tx *gorm.DB) error {
		var p P
		if err := l.scope(tx).First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		b := newBatch([]P{p}, l.idOf)
		if err := l.attach(tx, b, specs); err != nil {
			return err
		}
		out = &b.items[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadMany fetches the entities with the given ids, in the same order and
// with the same multiplicity as ids. An id that has no row yields an
// *InconsistentBatchError. At most maxQueryParams distinct ids are accepted;
// use LoadAll for unbounded loads.
func (l *Loader[P]) LoadMany(ctx context.Context, ids []uint, specs ...Spec[P]) ([]P, error) {
	if len(ids) == 0 {
		return []P{}, nil
	}
	unique := distinct(ids)
	if len(unique) > maxQueryParams {
		return nil, fmt.Errorf("batch of %d ids exceeds %d", len(unique), maxQueryParams)
	}

	var out []P
	err := l.read(ctx, func(tx *gorm.DB) error {
		var rows []P
		if err := l.scope(tx).Find(&rows, unique).Error; err != nil {
			return err
		}

		byID := make(map[uint]P, len(rows))
		for i := range rows {
			byID[l.idOf(&rows[i])] = rows[i]
		}

		items := make([]P, 0, len(ids))
		var missing []uint
		for _, id := range ids {
			p, ok := byID[id]
			if !ok {
				missing = append(missing, id)
				continue
			}
			items = append(items, p)
		}
		if len(missing) > 0 {
			return &InconsistentBatchError{Missing: missing}
		}

		b := newBatch(items, l.idOf)
		if err := l.attach(tx, b, specs); err != nil {
			return err
		}
		out = b.items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadAll fetches every entity ordered by id. Associations are joined
// against the base query, so the batch size is not bounded by how many ids
// one statement can bind.
func (l *Loader[P]) LoadAll(ctx context.Context, specs ...Spec[P]) ([]P, error) {
	return l.loadOrdered(ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Order("id ASC")
	}, func(tx *gorm.DB) *gorm.DB {
		return tx.Model(new(P)).Select("id")
	}, specs)
}

// LoadPage fetches one page in the requested sort order.
func (l *Loader[P]) LoadPage(ctx context.Context, page paging.Request, specs ...Spec[P]) ([]P, error) {
	page = page.Normalize()
	return l.loadOrdered(ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Order(page.Clause(l.sortColumns, "id")).Offset(page.Offset).Limit(page.Limit)
	}, nil, specs)
}

// loadOrdered runs query and attaches specs. When parents is set, spec
// queries select their parents through it instead of an id list.
func (l *Loader[P]) loadOrdered(ctx context.Context, query, parents func(*gorm.DB) *gorm.DB, specs []Spec[P]) ([]P, error) {
	var out []P
	err := l.read(ctx, func(tx *gorm.DB) error {
		var rows []P
		if err := query(l.scope(tx)).Find(&rows).Error; err != nil {
			return err
		}
		b := newBatch(rows, l.idOf)
		if parents != nil {
			b.parents = parents(tx)
		}
		if err := l.attach(tx, b, specs); err != nil {
			return err
		}
		out = b.items
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []P{}
	}
	return out, nil
}

func (l *Loader[P]) attach(tx *gorm.DB, b *batch[P], specs []Spec[P]) error {
	if len(b.items) == 0 {
		return nil
	}
	for _, spec := range specs {
		if err := spec.load(tx, b); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader[P]) read(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := l.db.WithContext(ctx).Transaction(fn)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func distinct(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
