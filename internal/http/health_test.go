package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/rentals/internal/indexsync"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubStats struct{ stats indexsync.Stats }

func (s stubStats) Stats() indexsync.Stats { return s.stats }

type stubCounter struct {
	n   int64
	err error
}

func (s stubCounter) Count(context.Context) (int64, error) { return s.n, s.err }

type stubSchedule struct{ next *time.Time }

func (s stubSchedule) NextRunTime() *time.Time { return s.next }

func getHealth(t *testing.T, controller *HealthController) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	router := gin.New()
	router.GET("/health", controller.Status)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return w, response
}

func TestHealthController_Status(t *testing.T) {
	t.Run("returns healthy when stores are reachable", func(t *testing.T) {
		controller := NewHealthController(stubPinger{}, stubPinger{}, stubStats{indexsync.Stats{Processed: 4}}, "1.0.0")

		w, response := getHealth(t, controller)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "1.0.0", response.Version)
		assert.Equal(t, "ok", response.Checks["database"])
		assert.Equal(t, "ok", response.Checks["search_index"])
		require.NotNil(t, response.IndexSync)
		assert.Equal(t, int64(4), response.IndexSync.Processed)
		assert.NotEmpty(t, response.Time)
	})

	t.Run("search index failure only degrades", func(t *testing.T) {
		controller := NewHealthController(stubPinger{}, stubPinger{err: errors.New("closed")}, nil, "1.0.0")

		w, response := getHealth(t, controller)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "degraded", response.Status)
		assert.Equal(t, "error: closed", response.Checks["search_index"])
		assert.Nil(t, response.IndexSync)
	})

	t.Run("returns unhealthy when database is nil", func(t *testing.T) {
		controller := NewHealthController(nil, stubPinger{}, nil, "1.0.0")

		w, response := getHealth(t, controller)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unhealthy", response.Status)
		assert.Equal(t, "not configured", response.Checks["database"])
	})

	t.Run("reports indexed documents and next reconciliation", func(t *testing.T) {
		next := time.Date(2026, 10, 15, 12, 30, 0, 0, time.UTC)
		controller := NewHealthController(stubPinger{}, stubPinger{}, nil, "1.0.0").
			WithDocumentCount(stubCounter{n: 42}).
			WithReconcileSchedule(stubSchedule{next: &next})

		w, response := getHealth(t, controller)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, response.IndexedDocuments)
		assert.Equal(t, int64(42), *response.IndexedDocuments)
		require.NotNil(t, response.NextReconcile)
		assert.True(t, next.Equal(*response.NextReconcile))
	})

	t.Run("omits the document count when the index is down", func(t *testing.T) {
		controller := NewHealthController(stubPinger{}, stubPinger{err: errors.New("closed")}, nil, "1.0.0").
			WithDocumentCount(stubCounter{n: 42})

		_, response := getHealth(t, controller)

		assert.Nil(t, response.IndexedDocuments)
		assert.Nil(t, response.NextReconcile)
	})
}
