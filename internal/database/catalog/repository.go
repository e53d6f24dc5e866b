// Package catalog provides database operations for amenities and categories.
//
// Amenities form a fixed catalog seeded at startup and are referenced by
// code. Categories are free-form, created on first use and matched
// case-insensitively; a category that no property uses anymore is removed.
//
// # Interface Implementation
//
//	var _ services.CatalogStore = (*Repository)(nil)
//
// # Usage
//
//	repo := catalog.NewRepository(db)
//	category, err := repo.GetOrCreateCategory("Seaside")
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/rentals/internal/entities"
	"github.com/mrlokans/rentals/internal/loader"
)

// ErrUnknownAmenity is returned when an amenity code is not in the catalog.
var ErrUnknownAmenity = errors.New("unknown amenity")

// Repository handles all amenity and category database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListAmenities retrieves the whole amenity catalog ordered by code.
func (r *Repository) ListAmenities() ([]entities.Amenity, error) {
	var amenities []entities.Amenity
	err := r.db.Order("code ASC").Find(&amenities).Error
	return amenities, err
}

// GetAmenityByCode retrieves an amenity by its code.
func (r *Repository) GetAmenityByCode(code string) (*entities.Amenity, error) {
	var amenity entities.Amenity
	err := r.db.Where("code = ?", strings.ToLower(code)).First(&amenity).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAmenity, code)
	}
	if err != nil {
		return nil, err
	}
	return &amenity, nil
}

// AmenitiesByCodes resolves codes in the given order, skipping duplicates.
// Any unknown code fails the whole call.
func (r *Repository) AmenitiesByCodes(codes []string) ([]entities.Amenity, error) {
	result := make([]entities.Amenity, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		key := strings.ToLower(strings.TrimSpace(code))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		amenity, err := r.GetAmenityByCode(key)
		if err != nil {
			return nil, err
		}
		result = append(result, *amenity)
	}
	return result, nil
}

// CreateCategory creates a new category.
func (r *Repository) CreateCategory(name string) (*entities.Category, error) {
	category := &entities.Category{Name: name}
	if err := r.db.Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// GetOrCreateCategory retrieves or creates a category (case-insensitive).
func (r *Repository) GetOrCreateCategory(name string) (*entities.Category, error) {
	var category entities.Category
	err := r.db.Where("LOWER(name) = LOWER(?)", name).First(&category).Error
	if err == gorm.ErrRecordNotFound {
		return r.CreateCategory(name)
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// CategoriesByNames resolves names to categories, creating missing ones.
func (r *Repository) CategoriesByNames(names []string) ([]entities.Category, error) {
	result := make([]entities.Category, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		category, err := r.GetOrCreateCategory(name)
		if err != nil {
			return nil, err
		}
		result = append(result, *category)
	}
	return result, nil
}

// ListCategories retrieves all categories ordered by name.
func (r *Repository) ListCategories() ([]entities.Category, error) {
	var categories []entities.Category
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

// SearchCategories searches categories by name (case-insensitive partial match).
func (r *Repository) SearchCategories(query string) ([]entities.Category, error) {
	var categories []entities.Category
	searchPattern := "%" + query + "%"
	err := r.db.Where("LOWER(name) LIKE LOWER(?)", searchPattern).Order("name ASC").Find(&categories).Error
	return categories, err
}

// GetCategoryByID retrieves a category by ID.
func (r *Repository) GetCategoryByID(id uint) (*entities.Category, error) {
	var category entities.Category
	err := r.db.First(&category, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, loader.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory deletes a category.
func (r *Repository) DeleteCategory(id uint) error {
	return r.db.Delete(&entities.Category{}, id).Error
}

// isCategoryOrphan checks if a category has no associated properties.
func (r *Repository) isCategoryOrphan(categoryID uint) (bool, error) {
	var count int64
	if err := r.db.Table("property_categories").Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

// deleteCategoryIfOrphan deletes a category if it has no associations.
func (r *Repository) deleteCategoryIfOrphan(categoryID uint) error {
	orphan, err := r.isCategoryOrphan(categoryID)
	if err != nil {
		return err
	}
	if orphan {
		return r.DeleteCategory(categoryID)
	}
	return nil
}

// DeleteOrphanCategories removes all orphan categories.
func (r *Repository) DeleteOrphanCategories() (int64, error) {
	result := r.db.Exec(`
		DELETE FROM categories
		WHERE id NOT IN (SELECT category_id FROM property_categories)
	`)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// AddAmenityToProperty associates an amenity with a property.
func (r *Repository) AddAmenityToProperty(propertyID uint, code string) error {
	property, err := r.property(propertyID)
	if err != nil {
		return err
	}
	amenity, err := r.GetAmenityByCode(code)
	if err != nil {
		return err
	}
	return r.db.Model(property).Association("Amenities").Append(amenity)
}

// RemoveAmenityFromProperty removes an amenity from a property.
func (r *Repository) RemoveAmenityFromProperty(propertyID uint, code string) error {
	property, err := r.property(propertyID)
	if err != nil {
		return err
	}
	amenity, err := r.GetAmenityByCode(code)
	if err != nil {
		return err
	}
	return r.db.Model(property).Association("Amenities").Delete(amenity)
}

// AddCategoryToProperty associates a category with a property, creating
// the category when needed.
func (r *Repository) AddCategoryToProperty(propertyID uint, name string) (*entities.Category, error) {
	property, err := r.property(propertyID)
	if err != nil {
		return nil, err
	}
	category, err := r.GetOrCreateCategory(name)
	if err != nil {
		return nil, err
	}
	if err := r.db.Model(property).Association("Categories").Append(category); err != nil {
		return nil, err
	}
	return category, nil
}

// RemoveCategoryFromProperty removes a category from a property.
func (r *Repository) RemoveCategoryFromProperty(propertyID, categoryID uint) error {
	property, err := r.property(propertyID)
	if err != nil {
		return err
	}
	category, err := r.GetCategoryByID(categoryID)
	if err != nil {
		return err
	}
	if err := r.db.Model(property).Association("Categories").Delete(category); err != nil {
		return err
	}
	return r.deleteCategoryIfOrphan(categoryID)
}

func (r *Repository) property(id uint) (*entities.Property, error) {
	var property entities.Property
	err := r.db.Select("id").First(&property, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, loader.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &property, nil
}
