package loader

import (
	"fmt"
	"slices"
	"sort"

	"gorm.io/gorm"
)

// Link is one row of a parent-to-relation join. RelatedID is nil for a
// parent that has no related rows.
type Link struct {
	ParentID  uint
	RelatedID *uint
}

// maxQueryParams bounds the ids bound into one IN list. SQLite refuses
// statements with more than 32766 variables.
var maxQueryParams = 5000

// Parents selects the parents of a batch in a Links query: an explicit id
// list, or the base query itself when the batch is unbounded.
type Parents struct {
	IDs   []uint
	query *gorm.DB
}

// Arg is the argument for an "IN (?)" condition on the parent id.
func (p Parents) Arg() any {
	if p.query != nil {
		return p.query
	}
	return p.IDs
}

// Spec is a to-many association that can be loaded onto a batch of P.
// Specs never see each other; each one issues its own queries.
type Spec[P any] interface {
	Relation() string
	load(tx *gorm.DB, b *batch[P]) error
}

// Bag loads an unordered to-many relation of P onto R.
type Bag[P, R any] struct {
	Name string

	// Links joins the given parents to this one relation only.
	Links func(tx *gorm.DB, parents Parents) ([]Link, error)
	// Related hydrates related rows by primary key. It is called once per
	// maxQueryParams ids.
	Related   func(tx *gorm.DB, ids []uint) ([]R, error)
	RelatedID func(r *R) uint
	// Assign writes the loaded relation into the parent's target attribute.
	Assign func(parent *P, related []R)
}

func (s Bag[P, R]) Relation() string {
	return s.Name
}

func (s Bag[P, R]) load(tx *gorm.DB, b *batch[P]) error {
	ids := b.distinctIDs()

	parents := Parents{IDs: ids, query: b.parents}
	if parents.query == nil && len(ids) > maxQueryParams {
		return fmt.Errorf("loading %s: batch of %d exceeds %d ids", s.Name, len(ids), maxQueryParams)
	}
	links, err := s.Links(tx, parents)
	if err != nil {
		return err
	}

	// The join comes back in whatever order the store picked. Put it back
	// into the caller's order before merging.
	sort.SliceStable(links, func(i, j int) bool {
		return b.position[links[i].ParentID] < b.position[links[j].ParentID]
	})

	present := make(map[uint]struct{}, len(ids))
	relatedSet := make(map[uint]struct{})
	var relatedIDs []uint
	for _, l := range links {
		present[l.ParentID] = struct{}{}
		if l.RelatedID == nil {
			continue
		}
		if _, ok := relatedSet[*l.RelatedID]; !ok {
			relatedSet[*l.RelatedID] = struct{}{}
			relatedIDs = append(relatedIDs, *l.RelatedID)
		}
	}

	var missing []uint
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return &InconsistentBatchError{Relation: s.Name, Missing: missing}
	}

	byID := make(map[uint]R, len(relatedIDs))
	for chunk := range slices.Chunk(relatedIDs, maxQueryParams) {
		rows, err := s.Related(tx, chunk)
		if err != nil {
			return err
		}
		for i := range rows {
			byID[s.RelatedID(&rows[i])] = rows[i]
		}
	}

	grouped := make(map[uint][]R, len(ids))
	for _, l := range links {
		if l.RelatedID == nil {
			continue
		}
		// A related row can vanish (soft delete) while its join row stays.
		r, ok := byID[*l.RelatedID]
		if !ok {
			continue
		}
		grouped[l.ParentID] = append(grouped[l.ParentID], r)
	}

	for i := range b.items {
		related := grouped[b.idOf(&b.items[i])]
		if related == nil {
			related = []R{}
		} else {
			related = slices.Clone(related)
		}
		s.Assign(&b.items[i], related)
	}
	return nil
}

// JoinTable describes a many-to-many join table.
type JoinTable struct {
	Parent        string // parent table, e.g. "properties"
	Join          string // join table, e.g. "property_amenities"
	ParentColumn  string // join column referencing the parent
	RelatedColumn string // join column referencing the related row
	SoftDelete    bool   // parent table has a deleted_at column
}

// ManyToMany builds a Bag over a join table. Related rows are hydrated
// through gorm, so soft-deleted related rows are dropped.
func ManyToMany[P, R any](name string, jt JoinTable, relatedID func(*R) uint, assign func(*P, []R)) Bag[P, R] {
	return Bag[P, R]{
		Name: name,
		Links: func(tx *gorm.DB, parents Parents) ([]Link, error) {
			var links []Link
			q := tx.Table(jt.Parent+" AS p").
				Select("p.id AS parent_id, j."+jt.RelatedColumn+" AS related_id").
				Joins("LEFT JOIN "+jt.Join+" j ON j."+jt.ParentColumn+" = p.id").
				Where("p.id IN (?)", parents.Arg())
			if jt.SoftDelete {
				q = q.Where("p.deleted_at IS NULL")
			}
			err := q.Order("j." + jt.RelatedColumn).Find(&links).Error
			return links, err
		},
		Related: func(tx *gorm.DB, ids []uint) ([]R, error) {
			var rows []R
			err := tx.Find(&rows, ids).Error
			return rows, err
		},
		RelatedID: relatedID,
		Assign:    assign,
	}
}

type batch[P any] struct {
	items    []P
	idOf     func(*P) uint
	position map[uint]int
	parents  *gorm.DB // set for unbounded batches
}

func newBatch[P any](items []P, idOf func(*P) uint) *batch[P] {
	b := &batch[P]{
		items:    items,
		idOf:     idOf,
		position: make(map[uint]int, len(items)),
	}
	for i := range items {
		id := idOf(&items[i])
		if _, ok := b.position[id]; !ok {
			b.position[id] = i
		}
	}
	return b
}

// distinctIDs returns the batch ids in input order with duplicates removed.
func (b *batch[P]) distinctIDs() []uint {
	ids := make([]uint, 0, len(b.position))
	seen := make(map[uint]struct{}, len(b.position))
	for i := range b.items {
		id := b.idOf(&b.items[i])
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
