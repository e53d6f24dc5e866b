package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/rentals/internal/indexsync"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SyncStats exposes index sync counters.
type SyncStats interface {
	Stats() indexsync.Stats
}

// DocumentCounter reports how many documents the search index holds.
type DocumentCounter interface {
	Count(ctx context.Context) (int64, error)
}

// ReconcileSchedule reports when the next reconciliation is due.
type ReconcileSchedule interface {
	NextRunTime() *time.Time
}

type HealthResponse struct {
	Status           string            `json:"status"`
	Time             string            `json:"time"`
	Version          string            `json:"version,omitempty"`
	Checks           map[string]string `json:"checks"`
	IndexSync        *indexsync.Stats  `json:"index_sync,omitempty"`
	IndexedDocuments *int64            `json:"indexed_documents,omitempty"`
	NextReconcile    *time.Time        `json:"next_reconcile,omitempty"`
}

type HealthController struct {
	db        Pinger
	index     Pinger
	sync      SyncStats
	documents DocumentCounter
	reconcile ReconcileSchedule
	version   string
}

func NewHealthController(db, index Pinger, sync SyncStats, version string) *HealthController {
	return &HealthController{
		db:      db,
		index:   index,
		sync:    sync,
		version: version,
	}
}

// WithDocumentCount adds the indexed document count to the report.
func (h *HealthController) WithDocumentCount(documents DocumentCounter) *HealthController {
	h.documents = documents
	return h
}

// WithReconcileSchedule adds the next reconciliation time to the report.
func (h *HealthController) WithReconcileSchedule(schedule ReconcileSchedule) *HealthController {
	h.reconcile = schedule
	return h
}

func (h *HealthController) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string)
	status := "healthy"

	// The relational store is required; the search index only degrades search.
	checks["database"] = ping(ctx, h.db)
	if checks["database"] != "ok" {
		status = "unhealthy"
	}
	checks["search_index"] = ping(ctx, h.index)
	if checks["search_index"] != "ok" && status == "healthy" {
		status = "degraded"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}
	if h.sync != nil {
		stats := h.sync.Stats()
		health.IndexSync = &stats
	}
	if h.documents != nil && checks["search_index"] == "ok" {
		if n, err := h.documents.Count(ctx); err == nil {
			health.IndexedDocuments = &n
		}
	}
	if h.reconcile != nil {
		health.NextReconcile = h.reconcile.NextRunTime()
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}

func ping(ctx context.Context, p Pinger) string {
	if p == nil {
		return "not configured"
	}
	if err := p.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
