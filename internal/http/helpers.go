package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/rentals/internal/database/properties"
	"github.com/mrlokans/rentals/internal/loader"
	"github.com/mrlokans/rentals/internal/paging"
	"github.com/mrlokans/rentals/internal/search"
	"github.com/mrlokans/rentals/internal/services"
)

// maxIDsPerRequest bounds ?ids= lists.
const maxIDsPerRequest = 500

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data    any   `json:"data"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

func newPaginatedResponse(data any, total int64, page paging.Request) PaginatedResponse {
	return PaginatedResponse{
		Data:    data,
		Total:   total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: int64(page.Offset+page.Limit) < total,
	}
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found", Code: "not_found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondError sends an error response with the given status code.
// Use the specific helpers (respondBadRequest, respondNotFound, etc.) when possible.
func respondError(c *gin.Context, status int, message, code string) {
	c.JSON(status, ErrorResponse{Error: message, Code: code})
}

// respondServiceError maps domain errors onto HTTP statuses. Anything it
// does not recognise is treated as a store failure.
func respondServiceError(c *gin.Context, err error, resource, op string) {
	var (
		validation   *services.ValidationError
		syntax       *search.QuerySyntaxError
		inconsistent *loader.InconsistentBatchError
	)

	switch {
	case errors.Is(err, loader.ErrNotFound):
		respondNotFound(c, resource)
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   validation.Error(),
			Code:    "invalid_input",
			Details: gin.H{"field": validation.Field},
		})
	case errors.Is(err, properties.ErrUnknownField):
		respondError(c, http.StatusBadRequest, err.Error(), "invalid_input")
	case errors.As(err, &syntax):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   syntax.Error(),
			Code:    "query_syntax",
			Details: gin.H{"position": syntax.Pos},
		})
	case errors.Is(err, search.ErrIndexUnavailable):
		log.Printf("[SEARCH] Index unavailable (%s): %v", op, err)
		respondError(c, http.StatusServiceUnavailable, "search index unavailable", "index_unavailable")
	case errors.As(err, &inconsistent):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "properties changed while loading, retry the request",
			Code:    "inconsistent_batch",
			Details: gin.H{"missing": inconsistent.Missing},
		})
	case errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusGatewayTimeout, "request timed out", "timeout")
	case errors.Is(err, context.Canceled):
		respondError(c, http.StatusRequestTimeout, "request cancelled", "cancelled")
	default:
		respondInternalError(c, err, op)
	}
}

// --- Success Response Helpers ---

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parseIDList parses a comma separated id list such as "7,3,9". Order and
// duplicates are preserved.
func parseIDList(raw string) ([]uint, error) {
	parts := strings.Split(raw, ",")
	if len(parts) > maxIDsPerRequest {
		return nil, fmt.Errorf("at most %d ids per request", maxIDsPerRequest)
	}
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// parsePage reads offset, limit and sort from the query string.
func parsePage(c *gin.Context) (paging.Request, bool) {
	page, err := paging.Parse(c.Query("offset"), c.Query("limit"), c.Query("sort"))
	if err != nil {
		respondBadRequest(c, err.Error())
		return paging.Request{}, false
	}
	return page, true
}

func setTotalCount(c *gin.Context, total int64) {
	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
}
