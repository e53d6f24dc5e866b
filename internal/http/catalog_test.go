package http

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/rentals/internal/entities"
)

type stubCatalog struct {
	categories []entities.Category
	lastQuery  string
}

func (s *stubCatalog) Amenities() ([]entities.Amenity, error) { return nil, nil }

func (s *stubCatalog) Categories(query string) ([]entities.Category, error) {
	s.lastQuery = query
	var out []entities.Category
	for _, c := range s.categories {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(query)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubCatalog) Owners() ([]entities.Owner, error) { return nil, nil }

func (s *stubCatalog) CreateOwner(name, email, phone string) (*entities.Owner, error) {
	return &entities.Owner{Name: name, Email: email, Phone: phone}, nil
}

func (s *stubCatalog) RenameOwner(ownerID uint, name string) (*entities.Owner, error) {
	return &entities.Owner{ID: ownerID, Name: name}, nil
}

func TestCatalogController_ListCategories(t *testing.T) {
	catalog := &stubCatalog{categories: []entities.Category{{ID: 1, Name: "Seaside"}, {ID: 2, Name: "Mountain"}}}
	router := NewRouter(RouterConfig{Catalog: catalog})

	w := doJSON(router, "GET", "/api/categories?q=sea", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sea", catalog.lastQuery)
	assert.Contains(t, w.Body.String(), "Seaside")
	assert.NotContains(t, w.Body.String(), "Mountain")

	w = doJSON(router, "GET", "/api/categories", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, catalog.lastQuery)
	assert.Contains(t, w.Body.String(), "Mountain")
}
