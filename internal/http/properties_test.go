package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/rentals/internal/entities"
	"github.com/mrlokans/rentals/internal/loader"
	"github.com/mrlokans/rentals/internal/paging"
	"github.com/mrlokans/rentals/internal/services"
)

// stubPropertyService keeps properties in a map and records the last call.
type stubPropertyService struct {
	items    map[uint]*entities.Property
	nextID   uint
	err      error
	lastPage paging.Request
	lastIDs  []uint
	patched  map[string]any
}

func newStubPropertyService() *stubPropertyService {
	return &stubPropertyService{items: make(map[uint]*entities.Property), nextID: 1}
}

func (s *stubPropertyService) add(title string) *entities.Property {
	p := &entities.Property{ID: s.nextID, Title: title, Status: entities.PropertyStatusDraft}
	s.items[p.ID] = p
	s.nextID++
	return p
}

func (s *stubPropertyService) get(id uint) (*entities.Property, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.items[id]
	if !ok {
		return nil, loader.ErrNotFound
	}
	return p, nil
}

func (s *stubPropertyService) Create(_ context.Context, in services.PropertyInput) (*entities.Property, error) {
	if s.err != nil {
		return nil, s.err
	}
	if in.Title == "" {
		return nil, &services.ValidationError{Field: "title", Msg: "must not be empty"}
	}
	p := s.add(in.Title)
	p.City = in.City
	return p, nil
}

func (s *stubPropertyService) Update(_ context.Context, id uint, in services.PropertyInput) (*entities.Property, error) {
	p, err := s.get(id)
	if err != nil {
		return nil, err
	}
	p.Title = in.Title
	return p, nil
}

func (s *stubPropertyService) Patch(_ context.Context, id uint, fields map[string]any) (*entities.Property, error) {
	s.patched = fields
	return s.get(id)
}

func (s *stubPropertyService) Delete(_ context.Context, id uint) error {
	if _, err := s.get(id); err != nil {
		return err
	}
	delete(s.items, id)
	return nil
}

func (s *stubPropertyService) Get(_ context.Context, id uint) (*entities.Property, error) {
	return s.get(id)
}

func (s *stubPropertyService) List(_ context.Context, page paging.Request) ([]entities.Property, int64, error) {
	s.lastPage = page
	if s.err != nil {
		return nil, 0, s.err
	}
	out := make([]entities.Property, 0, len(s.items))
	for id := uint(1); id < s.nextID; id++ {
		if p, ok := s.items[id]; ok {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (s *stubPropertyService) ListByIDs(_ context.Context, ids []uint) ([]entities.Property, error) {
	s.lastIDs = ids
	out := make([]entities.Property, 0, len(ids))
	for _, id := range ids {
		p, err := s.get(id)
		if err != nil {
			return nil, &loader.InconsistentBatchError{Missing: []uint{id}}
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubPropertyService) AddAmenity(_ context.Context, id uint, code string) (*entities.Property, error) {
	p, err := s.get(id)
	if err != nil {
		return nil, err
	}
	p.Amenities = append(p.Amenities, entities.Amenity{Code: code})
	return p, nil
}

func (s *stubPropertyService) RemoveAmenity(_ context.Context, id uint, _ string) (*entities.Property, error) {
	return s.get(id)
}

func (s *stubPropertyService) AddCategory(_ context.Context, id uint, name string) (*entities.Property, error) {
	p, err := s.get(id)
	if err != nil {
		return nil, err
	}
	p.Categories = append(p.Categories, entities.Category{ID: 1, Name: name})
	return p, nil
}

func (s *stubPropertyService) RemoveCategory(_ context.Context, id, _ uint) (*entities.Property, error) {
	return s.get(id)
}

func propertiesRouter(svc PropertyService) *gin.Engine {
	return NewRouter(RouterConfig{Properties: svc})
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPropertiesController_Create(t *testing.T) {
	svc := newStubPropertyService()
	router := propertiesRouter(svc)

	t.Run("creates a property", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/properties", map[string]any{"title": "Loft", "city": "Lisbon"})

		assert.Equal(t, http.StatusCreated, w.Code)
		var p entities.Property
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		assert.Equal(t, uint(1), p.ID)
		assert.Equal(t, "Lisbon", p.City)
	})

	t.Run("validation error is a 400 with the field", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/properties", map[string]any{"city": "Lisbon"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"title"`)
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/api/properties", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPropertiesController_Get(t *testing.T) {
	svc := newStubPropertyService()
	svc.add("Loft")
	router := propertiesRouter(svc)

	w := doJSON(router, "GET", "/api/properties/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Loft"`)

	w = doJSON(router, "GET", "/api/properties/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, "GET", "/api/properties/zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPropertiesController_List(t *testing.T) {
	svc := newStubPropertyService()
	svc.add("Loft")
	svc.add("Cabin")
	svc.add("Villa")
	router := propertiesRouter(svc)

	t.Run("paged", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/properties?offset=0&limit=2&sort=-price,title", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "3", w.Header().Get("X-Total-Count"))
		assert.Equal(t, 2, svc.lastPage.Limit)
		assert.Equal(t, []paging.Order{{Field: "price", Desc: true}, {Field: "title"}}, svc.lastPage.Sort)

		var resp PaginatedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(3), resp.Total)
		assert.True(t, resp.HasMore)
	})

	t.Run("bad limit", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/properties?limit=-1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("by ids keeps request order", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/properties?ids=3,1", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []uint{3, 1}, svc.lastIDs)
		var items []entities.Property
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
		require.Len(t, items, 2)
		assert.Equal(t, "Villa", items[0].Title)
		assert.Equal(t, "Loft", items[1].Title)
	})

	t.Run("by ids with a vanished property is a conflict", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/properties?ids=1,99", nil)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "inconsistent_batch")
	})

	t.Run("malformed ids", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/properties?ids=1,x", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPropertiesController_UpdatePatchDelete(t *testing.T) {
	svc := newStubPropertyService()
	svc.add("Loft")
	router := propertiesRouter(svc)

	w := doJSON(router, "PUT", "/api/properties/1", map[string]any{"title": "Penthouse"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Penthouse", svc.items[1].Title)

	w = doJSON(router, "PATCH", "/api/properties/1", map[string]any{"bedrooms": 3})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), svc.patched["bedrooms"])

	w = doJSON(router, "DELETE", "/api/properties/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, svc.items)

	w = doJSON(router, "DELETE", "/api/properties/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPropertiesController_Associations(t *testing.T) {
	svc := newStubPropertyService()
	svc.add("Loft")
	router := propertiesRouter(svc)

	w := doJSON(router, "PUT", "/api/properties/1/amenities/wifi", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"wifi"`)

	w = doJSON(router, "POST", "/api/properties/1/categories", map[string]any{"name": "Seaside"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Seaside"`)

	w = doJSON(router, "POST", "/api/properties/1/categories", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "DELETE", "/api/properties/1/categories/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "DELETE", "/api/properties/1/categories/none", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_SecurityHeaders(t *testing.T) {
	router := propertiesRouter(newStubPropertyService())

	w := doJSON(router, "GET", "/api/properties", nil)

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
