package searchindex

import (
	"github.com/mrlokans/rentals/internal/entities"
)

// FromProperty projects a fully loaded property (owner, amenities and
// categories) onto its index document.
func FromProperty(p *entities.Property) Document {
	doc := Document{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		City:          p.City,
		PricePerNight: p.PricePerNight,
		Bedrooms:      p.Bedrooms,
		MaxGuests:     p.MaxGuests,
		Status:        string(p.Status),
		Amenities:     make([]string, 0, len(p.Amenities)),
		Categories:    make([]string, 0, len(p.Categories)),
	}
	if p.OwnerID != nil {
		doc.OwnerID = *p.OwnerID
	}
	if p.Owner != nil {
		doc.OwnerName = p.Owner.Name
	}
	for _, a := range p.Amenities {
		doc.Amenities = append(doc.Amenities, a.Code)
	}
	for _, c := range p.Categories {
		doc.Categories = append(doc.Categories, c.Name)
	}
	return doc
}
