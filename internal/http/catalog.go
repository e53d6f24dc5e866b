package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	service CatalogService
}

func NewCatalogController(service CatalogService) *CatalogController {
	return &CatalogController{service: service}
}

// ListAmenities returns the amenity catalog
// GET /api/amenities
func (cc *CatalogController) ListAmenities(c *gin.Context) {
	amenities, err := cc.service.Amenities()
	if err != nil {
		respondInternalError(c, err, "list amenities")
		return
	}
	c.JSON(http.StatusOK, amenities)
}

// ListCategories returns all categories in use, optionally filtered by name
// GET /api/categories?q=
func (cc *CatalogController) ListCategories(c *gin.Context) {
	categories, err := cc.service.Categories(c.Query("q"))
	if err != nil {
		respondInternalError(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// ListOwners returns all owners
// GET /api/owners
func (cc *CatalogController) ListOwners(c *gin.Context) {
	owners, err := cc.service.Owners()
	if err != nil {
		respondInternalError(c, err, "list owners")
		return
	}
	c.JSON(http.StatusOK, owners)
}

// CreateOwner adds an owner
// POST /api/owners
func (cc *CatalogController) CreateOwner(c *gin.Context) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	owner, err := cc.service.CreateOwner(req.Name, req.Email, req.Phone)
	if err != nil {
		respondServiceError(c, err, "owner", "create owner")
		return
	}
	respondCreated(c, owner)
}

// RenameOwner changes an owner's name and reindexes their properties
// PATCH /api/owners/:id
func (cc *CatalogController) RenameOwner(c *gin.Context) {
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
	owner, err := cc.service.RenameOwner(id, req.Name)
	if err != nil {
		respondServiceError(c, err, "owner", "rename owner")
		return
	}
	c.JSON(http.StatusOK, owner)
}
