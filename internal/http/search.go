package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/rentals/internal/searchindex"
)

type SearchController struct {
	service SearchService
}

func NewSearchController(service SearchService) *SearchController {
	return &SearchController{service: service}
}

// SearchProperties runs a query against the search index. Results may lag
// behind the latest writes.
// GET /api/_search/properties?query=&offset=&limit=&sort=
func (sc *SearchController) SearchProperties(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}

	result, err := sc.service.Search(c.Request.Context(), c.Query("query"), page)
	if err != nil {
		respondServiceError(c, err, "document", "search properties")
		return
	}

	setTotalCount(c, result.Total)
	c.JSON(http.StatusOK, newPaginatedResponse(result.Items, result.Total, page))
}

type DocumentsController struct {
	documents IndexDocuments
}

func NewDocumentsController(documents IndexDocuments) *DocumentsController {
	return &DocumentsController{documents: documents}
}

// Get returns the indexed document of a property as the index currently
// holds it, which may lag behind GET /api/properties/:id.
// GET /api/_search/properties/:id
func (dc *DocumentsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := dc.documents.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, searchindex.ErrDocumentNotFound):
		respondNotFound(c, "document")
	case err != nil:
		log.Printf("[SEARCH] Index unavailable (get document %d): %v", id, err)
		respondError(c, http.StatusServiceUnavailable, "search index unavailable", "index_unavailable")
	default:
		c.JSON(http.StatusOK, doc)
	}
}
