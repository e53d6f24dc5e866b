package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/rentals/internal/services"
)

type PropertiesController struct {
	service PropertyService
}

func NewPropertiesController(service PropertyService) *PropertiesController {
	return &PropertiesController{service: service}
}

// List returns a page of properties, or the properties named by ?ids= in
// the given order.
// GET /api/properties
func (pc *PropertiesController) List(c *gin.Context) {
	if raw, ok := c.GetQuery("ids"); ok {
		ids, err := parseIDList(raw)
		if err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		items, err := pc.service.ListByIDs(c.Request.Context(), ids)
		if err != nil {
			respondServiceError(c, err, "property", "list properties by ids")
			return
		}
		setTotalCount(c, int64(len(items)))
		c.JSON(http.StatusOK, items)
		return
	}

	page, ok := parsePage(c)
	if !ok {
		return
	}
	items, total, err := pc.service.List(c.Request.Context(), page)
	if err != nil {
		respondServiceError(c, err, "property", "list properties")
		return
	}
	setTotalCount(c, total)
	c.JSON(http.StatusOK, newPaginatedResponse(items, total, page))
}

// Get returns one property with owner, amenities and categories.
// GET /api/properties/:id
func (pc *PropertiesController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, err := pc.service.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "property", "get property")
		return
	}
	c.JSON(http.StatusOK, p)
}

// Create adds a property.
// POST /api/properties
func (pc *PropertiesController) Create(c *gin.Context) {
	var in services.PropertyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	p, err := pc.service.Create(c.Request.Context(), in)
	if err != nil {
		respondServiceError(c, err, "property", "create property")
		return
	}
	respondCreated(c, p)
}

// Update replaces a property.
// PUT /api/properties/:id
func (pc *PropertiesController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var in services.PropertyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	p, err := pc.service.Update(c.Request.Context(), id, in)
	if err != nil {
		respondServiceError(c, err, "property", "update property")
		return
	}
	c.JSON(http.StatusOK, p)
}

// Patch updates some scalar fields of a property.
// PATCH /api/properties/:id
func (pc *PropertiesController) Patch(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	p, err := pc.service.Patch(c.Request.Context(), id, fields)
	if err != nil {
		respondServiceError(c, err, "property", "patch property")
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete removes a property.
// DELETE /api/properties/:id
func (pc *PropertiesController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := pc.service.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "property", "delete property")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddAmenity attaches an amenity by code.
// PUT /api/properties/:id/amenities/:code
func (pc *PropertiesController) AddAmenity(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, err := pc.service.AddAmenity(c.Request.Context(), id, c.Param("code"))
	if err != nil {
		respondServiceError(c, err, "property", "add amenity")
		return
	}
	c.JSON(http.StatusOK, p)
}

// RemoveAmenity detaches an amenity by code.
// DELETE /api/properties/:id/amenities/:code
func (pc *PropertiesController) RemoveAmenity(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, err := pc.service.RemoveAmenity(c.Request.Context(), id, c.Param("code"))
	if err != nil {
		respondServiceError(c, err, "property", "remove amenity")
		return
	}
	c.JSON(http.StatusOK, p)
}

// AddCategory attaches a category, creating it if needed.
// POST /api/properties/:id/categories
func (pc *PropertiesController) AddCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}
	p, err := pc.service.AddCategory(c.Request.Context(), id, req.Name)
	if err != nil {
		respondServiceError(c, err, "property", "add category")
		return
	}
	c.JSON(http.StatusOK, p)
}

// RemoveCategory detaches a category.
// DELETE /api/properties/:id/categories/:categoryId
func (pc *PropertiesController) RemoveCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	categoryID, ok := parseIDParam(c, "categoryId")
	if !ok {
		return
	}
	p, err := pc.service.RemoveCategory(c.Request.Context(), id, categoryID)
	if err != nil {
		respondServiceError(c, err, "property or category", "remove category")
		return
	}
	c.JSON(http.StatusOK, p)
}
