package http

import (
	"context"

	"github.com/mrlokans/rentals/internal/entities"
	"github.com/mrlokans/rentals/internal/paging"
	"github.com/mrlokans/rentals/internal/search"
	"github.com/mrlokans/rentals/internal/searchindex"
	"github.com/mrlokans/rentals/internal/services"
)

// Each controller declares the narrow slice of the service layer it uses.
// services.PropertyService implements all of them.

// PropertyService covers property CRUD and association edits.
type PropertyService interface {
	Create(ctx context.Context, in services.PropertyInput) (*entities.Property, error)
	Update(ctx context.Context, id uint, in services.PropertyInput) (*entities.Property, error)
	Patch(ctx context.Context, id uint, fields map[string]any) (*entities.Property, error)
	Delete(ctx context.Context, id uint) error

	Get(ctx context.Context, id uint) (*entities.Property, error)
	List(ctx context.Context, page paging.Request) ([]entities.Property, int64, error)
	ListByIDs(ctx context.Context, ids []uint) ([]entities.Property, error)

	AddAmenity(ctx context.Context, id uint, code string) (*entities.Property, error)
	RemoveAmenity(ctx context.Context, id uint, code string) (*entities.Property, error)
	AddCategory(ctx context.Context, id uint, name string) (*entities.Property, error)
	RemoveCategory(ctx context.Context, id, categoryID uint) (*entities.Property, error)
}

// SearchService runs index queries.
type SearchService interface {
	Search(ctx context.Context, query string, page paging.Request) (*search.Page, error)
}

// IndexDocuments reads the search index directly.
type IndexDocuments interface {
	Get(ctx context.Context, id uint) (*searchindex.Document, error)
	Count(ctx context.Context) (int64, error)
}

// CatalogService lists amenities, categories and owners.
type CatalogService interface {
	Amenities() ([]entities.Amenity, error)
	Categories(query string) ([]entities.Category, error)
	Owners() ([]entities.Owner, error)
	CreateOwner(name, email, phone string) (*entities.Owner, error)
	RenameOwner(ownerID uint, name string) (*entities.Owner, error)
}
