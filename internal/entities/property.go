package entities

import (
	"time"

	"gorm.io/gorm"
)

type PropertyStatus string

const (
	PropertyStatusDraft    PropertyStatus = "draft"
	PropertyStatusListed   PropertyStatus = "listed"
	PropertyStatusUnlisted PropertyStatus = "unlisted"
)

type Owner struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:200" json:"name"`
	Email     string         `gorm:"uniqueIndex;size:255" json:"email"`
	Phone     string         `gorm:"size:40" json:"phone,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Property struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"index;size:256" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	City        string `gorm:"index;size:128" json:"city"`
	Address     string `gorm:"size:512" json:"address,omitempty"`

	PricePerNight int            `json:"price_per_night"` // minor currency units
	Bedrooms      int            `json:"bedrooms"`
	MaxGuests     int            `json:"max_guests"`
	Status        PropertyStatus `gorm:"size:20;default:'draft'" json:"status"`

	// Relationships
	OwnerID    *uint      `gorm:"index" json:"owner_id,omitempty"`
	Owner      *Owner     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Amenities  []Amenity  `gorm:"many2many:property_amenities;" json:"amenities"`
	Categories []Category `gorm:"many2many:property_categories;" json:"categories"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// SameAs reports identity equality. Entities that were never persisted
// have no identity and are never equal to anything.
func (p *Property) SameAs(other *Property) bool {
	if p == nil || other == nil {
		return false
	}
	return p.ID != 0 && p.ID == other.ID
}

type Amenity struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Code        string     `gorm:"uniqueIndex;size:50" json:"code"`
	DisplayName string     `gorm:"size:100" json:"display_name"`
	Properties  []Property `gorm:"many2many:property_amenities;" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Category struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Name       string     `gorm:"index;size:100" json:"name"`
	Properties []Property `gorm:"many2many:property_categories;" json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (Owner) TableName() string {
	return "owners"
}

func (Property) TableName() string {
	return "properties"
}

func (Amenity) TableName() string {
	return "amenities"
}

func (Category) TableName() string {
	return "categories"
}
