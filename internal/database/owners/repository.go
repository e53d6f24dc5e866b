// Package owners provides database operations for property owners.
//
// # Usage
//
//	repo := owners.NewRepository(db)
//	owner, err := repo.CreateOwner("Ana Costa", "ana@example.com", "")
package owners

import (
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/rentals/internal/entities"
	"github.com/mrlokans/rentals/internal/loader"
)

// Repository handles all owner database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new owners repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateOwner creates a new owner.
func (r *Repository) CreateOwner(name, email, phone string) (*entities.Owner, error) {
	owner := &entities.Owner{
		Name:  name,
		Email: strings.ToLower(strings.TrimSpace(email)),
		Phone: phone,
	}
	if err := r.db.Create(owner).Error; err != nil {
		return nil, err
	}
	return owner, nil
}

// GetOwnerByID retrieves an owner by ID.
func (r *Repository) GetOwnerByID(id uint) (*entities.Owner, error) {
	var owner entities.Owner
	err := r.db.First(&owner, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, loader.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

// GetOwnerByEmail retrieves an owner by email (case-insensitive).
func (r *Repository) GetOwnerByEmail(email string) (*entities.Owner, error) {
	var owner entities.Owner
	err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&owner).Error
	if err == gorm.ErrRecordNotFound {
		return nil, loader.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

// ListOwners retrieves all owners ordered by name.
func (r *Repository) ListOwners() ([]entities.Owner, error) {
	var owners []entities.Owner
	err := r.db.Order("name ASC, id ASC").Find(&owners).Error
	return owners, err
}

// RenameOwner changes the owner's display name.
func (r *Repository) RenameOwner(id uint, name string) error {
	result := r.db.Model(&entities.Owner{}).Where("id = ?", id).Update("name", name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return loader.ErrNotFound
	}
	return nil
}

// PropertyIDs returns the ids of the live properties owned by ownerID.
func (r *Repository) PropertyIDs(ownerID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entities.Property{}).Where("owner_id = ?", ownerID).Order("id").Pluck("id", &ids).Error
	return ids, err
}
