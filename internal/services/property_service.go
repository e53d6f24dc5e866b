package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mrlokans/rentals/internal/database/catalog"
	"github.com/mrlokans/rentals/internal/entities"
	"github.com/mrlokans/rentals/internal/loader"
	"github.com/mrlokans/rentals/internal/paging"
	"github.com/mrlokans/rentals/internal/search"
)

// PropertyInput is the writable shape of a property.
type PropertyInput struct {
	Title         string                  `json:"title"`
	Description   string                  `json:"description"`
	City          string                  `json:"city"`
	Address       string                  `json:"address"`
	PricePerNight int                     `json:"price_per_night"`
	Bedrooms      int                     `json:"bedrooms"`
	MaxGuests     int                     `json:"max_guests"`
	Status        entities.PropertyStatus `json:"status"`
	OwnerID       *uint                   `json:"owner_id"`
	Amenities     []string                `json:"amenities"`  // amenity codes
	Categories    []string                `json:"categories"` // category names, created on demand
}

// PropertyService coordinates relational writes with index propagation.
// The notifier is only called once the relational transaction has
// committed; it never sees a write that failed.
type PropertyService struct {
	properties PropertyStore
	catalog    CatalogStore
	owners     OwnerStore
	notifier   IndexNotifier
	searcher   Searcher
}

func NewPropertyService(properties PropertyStore, catalog CatalogStore, owners OwnerStore, notifier IndexNotifier, searcher Searcher) *PropertyService {
	return &PropertyService{
		properties: properties,
		catalog:    catalog,
		owners:     owners,
		notifier:   notifier,
		searcher:   searcher,
	}
}

func (s *PropertyService) Create(ctx context.Context, in PropertyInput) (*entities.Property, error) {
	p, err := s.build(in)
	if err != nil {
		return nil, err
	}
	if err := s.properties.Create(ctx, p); err != nil {
		return nil, err
	}
	s.notifier.OnUpserted(p)
	return s.properties.GetByID(ctx, p.ID)
}

func (s *PropertyService) Update(ctx context.Context, id uint, in PropertyInput) (*entities.Property, error) {
	p, err := s.build(in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.properties.Update(ctx, p); err != nil {
		return nil, err
	}
	s.notifier.OnUpserted(p)
	return s.properties.GetByID(ctx, id)
}

// Patch updates the given scalar fields, keyed by their JSON names.
func (s *PropertyService) Patch(ctx context.Context, id uint, fields map[string]any) (*entities.Property, error) {
	if err := s.validatePatch(fields); err != nil {
		return nil, err
	}
	if err := s.properties.Patch(ctx, id, fields); err != nil {
		return nil, err
	}
	s.notifier.OnUpserted(&entities.Property{ID: id})
	return s.properties.GetByID(ctx, id)
}

func (s *PropertyService) Delete(ctx context.Context, id uint) error {
	if err := s.properties.Delete(ctx, id); err != nil {
		return err
	}
	s.notifier.OnDeleted(id)
	return nil
}

func (s *PropertyService) Get(ctx context.Context, id uint) (*entities.Property, error) {
	return s.properties.GetByID(ctx, id)
}

// List returns one page of properties and the total number of properties.
func (s *PropertyService) List(ctx context.Context, page paging.Request) ([]entities.Property, int64, error) {
	total, err := s.properties.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.properties.Page(ctx, page)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByIDs returns properties in the order of ids.
func (s *PropertyService) ListByIDs(ctx context.Context, ids []uint) ([]entities.Property, error) {
	return s.properties.GetBatch(ctx, ids)
}

func (s *PropertyService) Search(ctx context.Context, query string, page paging.Request) (*search.Page, error) {
	return s.searcher.Search(ctx, query, page)
}

func (s *PropertyService) AddAmenity(ctx context.Context, id uint, code string) (*entities.Property, error) {
	if err := s.catalog.AddAmenityToProperty(id, code); err != nil {
		return nil, s.catalogError("amenity", err)
	}
	return s.touched(ctx, id)
}

func (s *PropertyService) RemoveAmenity(ctx context.Context, id uint, code string) (*entities.Property, error) {
	if err := s.catalog.RemoveAmenityFromProperty(id, code); err != nil {
		return nil, s.catalogError("amenity", err)
	}
	return s.touched(ctx, id)
}

func (s *PropertyService) AddCategory(ctx context.Context, id uint, name string) (*entities.Property, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "category", Msg: "must not be empty"}
	}
	if _, err := s.catalog.AddCategoryToProperty(id, name); err != nil {
		return nil, err
	}
	return s.touched(ctx, id)
}

func (s *PropertyService) RemoveCategory(ctx context.Context, id, categoryID uint) (*entities.Property, error) {
	if err := s.catalog.RemoveCategoryFromProperty(id, categoryID); err != nil {
		return nil, err
	}
	return s.touched(ctx, id)
}

func (s *PropertyService) Amenities() ([]entities.Amenity, error) {
	return s.catalog.ListAmenities()
}

// Categories lists categories, narrowed to names containing query when it
// is not blank.
func (s *PropertyService) Categories(query string) ([]entities.Category, error) {
	if query = strings.TrimSpace(query); query != "" {
		return s.catalog.SearchCategories(query)
	}
	return s.catalog.ListCategories()
}

func (s *PropertyService) CreateOwner(name, email, phone string) (*entities.Owner, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Msg: "must not be empty"}
	}
	if !strings.Contains(email, "@") {
		return nil, &ValidationError{Field: "email", Msg: "must be an email address"}
	}
	return s.owners.CreateOwner(strings.TrimSpace(name), email, phone)
}

func (s *PropertyService) Owners() ([]entities.Owner, error) {
	return s.owners.ListOwners()
}

// RenameOwner renames an owner and resyncs every property they own, since
// the owner name is part of each property's search document.
func (s *PropertyService) RenameOwner(ownerID uint, name string) (*entities.Owner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Msg: "must not be empty"}
	}
	if err := s.owners.RenameOwner(ownerID, name); err != nil {
		return nil, err
	}

	ids, err := s.owners.PropertyIDs(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties of owner %d: %w", ownerID, err)
	}
	for _, id := range ids {
		s.notifier.Resync(id)
	}
	return s.owners.GetOwnerByID(ownerID)
}

func (s *PropertyService) touched(ctx context.Context, id uint) (*entities.Property, error) {
	s.notifier.OnUpserted(&entities.Property{ID: id})
	return s.properties.GetByID(ctx, id)
}

func (s *PropertyService) catalogError(field string, err error) error {
	if errors.Is(err, catalog.ErrUnknownAmenity) {
		return &ValidationError{Field: field, Msg: err.Error()}
	}
	return err
}

func (s *PropertyService) build(in PropertyInput) (*entities.Property, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	amenities, err := s.catalog.AmenitiesByCodes(in.Amenities)
	if err != nil {
		return nil, s.catalogError("amenities", err)
	}
	categories, err := s.catalog.CategoriesByNames(in.Categories)
	if err != nil {
		return nil, err
	}

	return &entities.Property{
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		City:          strings.TrimSpace(in.City),
		Address:       in.Address,
		PricePerNight: in.PricePerNight,
		Bedrooms:      in.Bedrooms,
		MaxGuests:     in.MaxGuests,
		Status:        in.Status,
		OwnerID:       in.OwnerID,
		Amenities:     amenities,
		Categories:    categories,
	}, nil
}

func (s *PropertyService) validate(in PropertyInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Msg: "must not be empty"}
	}
	if in.PricePerNight < 0 {
		return &ValidationError{Field: "price_per_night", Msg: "must not be negative"}
	}
	if in.Bedrooms < 0 {
		return &ValidationError{Field: "bedrooms", Msg: "must not be negative"}
	}
	if in.MaxGuests < 0 {
		return &ValidationError{Field: "max_guests", Msg: "must not be negative"}
	}
	if in.Status != "" && !validStatus(in.Status) {
		return &ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", in.Status)}
	}
	if in.OwnerID != nil {
		return s.ownerExists(*in.OwnerID)
	}
	return nil
}

func (s *PropertyService) validatePatch(fields map[string]any) error {
	if v, ok := fields["title"]; ok {
		title, isString := v.(string)
		if !isString || strings.TrimSpace(title) == "" {
			return &ValidationError{Field: "title", Msg: "must be a non-empty string"}
		}
	}
	if v, ok := fields["status"]; ok {
		status, isString := v.(string)
		if !isString || !validStatus(entities.PropertyStatus(status)) {
			return &ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %v", v)}
		}
	}
	for _, name := range []string{"price_per_night", "bedrooms", "max_guests"} {
		v, ok := fields[name]
		if !ok {
			continue
		}
		n, isNumber := v.(float64)
		if i, isInt := v.(int); isInt {
			n, isNumber = float64(i), true
		}
		if !isNumber || n < 0 || n != float64(int(n)) {
			return &ValidationError{Field: name, Msg: "must be a non-negative integer"}
		}
	}
	if v, ok := fields["owner_id"]; ok && v != nil {
		n, isNumber := v.(float64)
		if i, isInt := v.(int); isInt {
			n, isNumber = float64(i), true
		}
		if !isNumber || n <= 0 || n != float64(int(n)) {
			return &ValidationError{Field: "owner_id", Msg: "must be a positive integer"}
		}
		return s.ownerExists(uint(n))
	}
	return nil
}

func (s *PropertyService) ownerExists(id uint) error {
	if _, err := s.owners.GetOwnerByID(id); err != nil {
		if errors.Is(err, loader.ErrNotFound) {
			return &ValidationError{Field: "owner_id", Msg: fmt.Sprintf("owner %d does not exist", id)}
		}
		return err
	}
	return nil
}

func validStatus(status entities.PropertyStatus) bool {
	switch status {
	case entities.PropertyStatusDraft, entities.PropertyStatusListed, entities.PropertyStatusUnlisted:
		return true
	}
	return false
}
