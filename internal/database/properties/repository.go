// Package properties provides database operations for rental properties.
//
// Reads go through a loader.Loader so that owners, amenities and categories
// are fetched without multiplying rows. Writes run in a transaction and
// return once it has committed; propagating the change to the search index
// is the caller's job.
//
// # Interface Implementation
//
//	var _ services.PropertyStore = (*Repository)(nil)
//	var _ indexsync.DocumentSource = (*Repository)(nil)
//
// # Usage
//
//	repo := properties.NewRepository(db)
//	props, err := repo.GetBatch(ctx, []uint{7, 3, 9})
package properties

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/rentals/internal/entities"
	"github.com/mrlokans/rentals/internal/loader"
	"github.com/mrlokans/rentals/internal/paging"
	"github.com/mrlokans/rentals/internal/searchindex"
)

// ErrUnknownField is returned by Patch for fields that cannot be patched.
var ErrUnknownField = errors.New("unknown or read-only field")

// SortColumns maps API sort fields to property columns.
var SortColumns = map[string]string{
	"id":       "id",
	"title":    "title",
	"city":     "city",
	"price":    "price_per_night",
	"bedrooms": "bedrooms",
	"guests":   "max_guests",
	"created":  "created_at",
}

var patchable = map[string]string{
	"title":           "title",
	"description":     "description",
	"city":            "city",
	"address":         "address",
	"price_per_night": "price_per_night",
	"bedrooms":        "bedrooms",
	"max_guests":      "max_guests",
	"status":          "status",
	"owner_id":        "owner_id",
}

// Repository handles all property database operations.
type Repository struct {
	db         *gorm.DB
	loader     *loader.Loader[entities.Property]
	amenities  loader.Bag[entities.Property, entities.Amenity]
	categories loader.Bag[entities.Property, entities.Category]
}

// NewRepository creates a new properties repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
		loader: loader.New(db, propertyID,
			loader.WithBaseScope[entities.Property](func(tx *gorm.DB) *gorm.DB {
				return tx.Preload("Owner")
			}),
			loader.WithSortColumns[entities.Property](SortColumns),
		),
		amenities:  AmenitiesSpec(),
		categories: CategoriesSpec(),
	}
}

func propertyID(p *entities.Property) uint { return p.ID }

// AmenitiesSpec loads Property.Amenities through property_amenities.
func AmenitiesSpec() loader.Bag[entities.Property, entities.Amenity] {
	return loader.ManyToMany("amenities",
		loader.JoinTable{
			Parent:        "properties",
			Join:          "property_amenities",
			ParentColumn:  "property_id",
			RelatedColumn: "amenity_id",
			SoftDelete:    true,
		},
		func(a *entities.Amenity) uint { return a.ID },
		func(p *entities.Property, related []entities.Amenity) { p.Amenities = related },
	)
}

// CategoriesSpec loads Property.Categories through property_categories.
func CategoriesSpec() loader.Bag[entities.Property, entities.Category] {
	return loader.ManyToMany("categories",
		loader.JoinTable{
			Parent:        "properties",
			Join:          "property_categories",
			ParentColumn:  "property_id",
			RelatedColumn: "category_id",
			SoftDelete:    true,
		},
		func(c *entities.Category) uint { return c.ID },
		func(p *entities.Property, related []entities.Category) { p.Categories = related },
	)
}

func (r *Repository) specs() []loader.Spec[entities.Property] {
	return []loader.Spec[entities.Property]{r.amenities, r.categories}
}

// Create inserts a property and links it to the given amenities and
// categories, which must already exist.
func (r *Repository) Create(ctx context.Context, p *entities.Property) error {
	if p.Status == "" {
		p.Status = entities.PropertyStatusDraft
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Owner", "Amenities.*", "Categories.*").Create(p).Error
	})
}

// Update replaces the scalar fields and both association sets of an
// existing property.
func (r *Repository) Update(ctx context.Context, p *entities.Property) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entities.Property
		if err := tx.Select("id", "created_at").First(&existing, p.ID).Error; err != nil {
			return notFound(err)
		}
		p.CreatedAt = existing.CreatedAt
		if p.Status == "" {
			p.Status = entities.PropertyStatusDraft
		}

		amenities, categories := p.Amenities, p.Categories
		if err := tx.Omit("Owner", "Amenities", "Categories").Save(p).Error; err != nil {
			return fmt.Errorf("failed to update property %d: %w", p.ID, err)
		}
		if err := tx.Model(p).Association("Amenities").Replace(amenities); err != nil {
			return fmt.Errorf("failed to replace amenities: %w", err)
		}
		if err := tx.Model(p).Association("Categories").Replace(categories); err != nil {
			return fmt.Errorf("failed to replace categories: %w", err)
		}
		return nil
	})
}

// Patch updates a subset of scalar fields. Keys are the JSON field names.
func (r *Repository) Patch(ctx context.Context, id uint, fields map[string]any) error {
	updates := make(map[string]any, len(fields))
	for name, value := range fields {
		column, ok := patchable[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		updates[column] = value
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entities.Property
		if err := tx.Select("id").First(&existing, id).Error; err != nil {
			return notFound(err)
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&existing).Updates(updates).Error
	})
}

// Delete soft-deletes a property and removes its association rows.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entities.Property
		if err := tx.Select("id").First(&existing, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Exec("DELETE FROM property_amenities WHERE property_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM property_categories WHERE property_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Property{}, id).Error
	})
}

// GetByID loads a property with its owner, amenities and categories.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Property, error) {
	return r.loader.LoadOne(ctx, id, r.specs()...)
}

// GetBatch loads properties in the order of ids, duplicates included.
func (r *Repository) GetBatch(ctx context.Context, ids []uint) ([]entities.Property, error) {
	return r.loader.LoadMany(ctx, ids, r.specs()...)
}

// All loads every property ordered by id.
func (r *Repository) All(ctx context.Context) ([]entities.Property, error) {
	return r.loader.LoadAll(ctx, r.specs()...)
}

// Page loads one page of properties.
func (r *Repository) Page(ctx context.Context, page paging.Request) ([]entities.Property, error) {
	return r.loader.LoadPage(ctx, page, r.specs()...)
}

// Count returns the number of live properties.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entities.Property{}).Count(&n).Error
	return n, err
}

// AllIDs returns the ids of all live properties in ascending order.
func (r *Repository) AllIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entities.Property{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

// LoadDocument reads the committed state of a property and projects it
// onto its search document. Returns loader.ErrNotFound once the property
// is gone.
func (r *Repository) LoadDocument(ctx context.Context, id uint) (*searchindex.Document, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	doc := searchindex.FromProperty(p)
	return &doc, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return loader.ErrNotFound
	}
	return err
}
