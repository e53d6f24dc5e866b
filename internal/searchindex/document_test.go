package searchindex

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/rentals/internal/entities"
)

func TestFromProperty(t *testing.T) {
	ownerID := uint(4)
	p := &entities.Property{
		ID:            7,
		Title:         "Loft",
		City:          "Lisbon",
		PricePerNight: 12000,
		Bedrooms:      2,
		MaxGuests:     4,
		Status:        entities.PropertyStatusListed,
		OwnerID:       &ownerID,
		Owner:         &entities.Owner{ID: 4, Name: "Ana Costa"},
		Amenities:     []entities.Amenity{{ID: 1, Code: "wifi"}, {ID: 3, Code: "pool"}},
		Categories:    []entities.Category{{ID: 2, Name: "City"}},
	}

	doc := FromProperty(p)

	assert.Equal(t, uint(7), doc.ID)
	assert.Equal(t, uint(4), doc.OwnerID)
	assert.Equal(t, "Ana Costa", doc.OwnerName)
	assert.Equal(t, "listed", doc.Status)
	assert.Equal(t, []string{"wifi", "pool"}, doc.Amenities)
	assert.Equal(t, []string{"City"}, doc.Categories)
}

func TestFromProperty_NoAssociations(t *testing.T) {
	doc := FromProperty(&entities.Property{ID: 1, Title: "Bare"})

	assert.Zero(t, doc.OwnerID)
	assert.Empty(t, doc.OwnerName)
	assert.NotNil(t, doc.Amenities)
	assert.NotNil(t, doc.Categories)
}
