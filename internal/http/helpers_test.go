package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/rentals/internal/database/properties"
	"github.com/mrlokans/rentals/internal/loader"
	"github.com/mrlokans/rentals/internal/search"
	"github.com/mrlokans/rentals/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseIDParam_Valid(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "123"}}

	id, ok := parseIDParam(c, "id")

	assert.True(t, ok)
	assert.Equal(t, uint(123), id)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseIDParam_Invalid(t *testing.T) {
	for _, value := range []string{"abc", "-1", "0", ""} {
		t.Run(fmt.Sprintf("%q", value), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Params = gin.Params{{Key: "id", Value: value}}

			id, ok := parseIDParam(c, "id")

			assert.False(t, ok)
			assert.Equal(t, uint(0), id)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "invalid id")
		})
	}
}

func TestParseIDList(t *testing.T) {
	ids, err := parseIDList("7, 3,9,3")
	require.NoError(t, err)
	assert.Equal(t, []uint{7, 3, 9, 3}, ids)

	ids, err = parseIDList("")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = parseIDList("7,x")
	assert.ErrorContains(t, err, `invalid id "x"`)

	_, err = parseIDList("0")
	assert.Error(t, err)
}

func TestRespondServiceError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", loader.ErrNotFound, http.StatusNotFound, "not_found"},
		{"validation", &services.ValidationError{Field: "title", Msg: "must not be empty"}, http.StatusBadRequest, "invalid_input"},
		{"unknown patch field", fmt.Errorf("%w: id", properties.ErrUnknownField), http.StatusBadRequest, "invalid_input"},
		{"query syntax", &search.QuerySyntaxError{Query: "a:", Pos: 2, Msg: "missing value"}, http.StatusBadRequest, "query_syntax"},
		{"index unavailable", &search.IndexUnavailableError{Op: "query", Err: errors.New("disk I/O error")}, http.StatusServiceUnavailable, "index_unavailable"},
		{"inconsistent batch", &loader.InconsistentBatchError{Missing: []uint{9}}, http.StatusConflict, "inconsistent_batch"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
		{"cancelled", context.Canceled, http.StatusRequestTimeout, "cancelled"},
		{"store failure", errors.New("database is locked"), http.StatusInternalServerError, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondServiceError(c, tc.err, "property", "test")

			assert.Equal(t, tc.status, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestRespondServiceError_HidesStoreFailure(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondServiceError(c, errors.New("secret dsn leaked"), "property", "test")

	assert.NotContains(t, w.Body.String(), "secret")
}
