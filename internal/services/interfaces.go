package services

import (
	"context"

	"github.com/mrlokans/rentals/internal/entities"
	"github.com/mrlokans/rentals/internal/paging"
	"github.com/mrlokans/rentals/internal/search"
)

// PropertyStore is the relational side of properties. Every write commits
// before it returns.
type PropertyStore interface {
	Create(ctx context.Context, p *entities.Property) error
	Update(ctx context.Context, p *entities.Property) error
	Patch(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) error

	GetByID(ctx context.Context, id uint) (*entities.Property, error)
	GetBatch(ctx context.Context, ids []uint) ([]entities.Property, error)
	Page(ctx context.Context, page paging.Request) ([]entities.Property, error)
	Count(ctx context.Context) (int64, error)
}

// CatalogStore resolves and attaches amenities and categories.
type CatalogStore interface {
	ListAmenities() ([]entities.Amenity, error)
	ListCategories() ([]entities.Category, error)
	SearchCategories(query string) ([]entities.Category, error)
	AmenitiesByCodes(codes []string) ([]entities.Amenity, error)
	CategoriesByNames(names []string) ([]entities.Category, error)

	AddAmenityToProperty(propertyID uint, code string) error
	RemoveAmenityFromProperty(propertyID uint, code string) error
	AddCategoryToProperty(propertyID uint, name string) (*entities.Category, error)
	RemoveCategoryFromProperty(propertyID, categoryID uint) error
}

// OwnerStore manages owners. Renaming an owner changes the documents of
// all their properties.
type OwnerStore interface {
	CreateOwner(name, email, phone string) (*entities.Owner, error)
	GetOwnerByID(id uint) (*entities.Owner, error)
	ListOwners() ([]entities.Owner, error)
	RenameOwner(id uint, name string) error
	PropertyIDs(ownerID uint) ([]uint, error)
}

// IndexNotifier is told about committed changes so the search index can
// follow. Implementations must not block on index I/O.
type IndexNotifier interface {
	OnUpserted(p *entities.Property)
	OnDeleted(id uint)
	Resync(id uint)
}

// Searcher runs search queries against the index.
type Searcher interface {
	Search(ctx context.Context, query string, page paging.Request) (*search.Page, error)
}
