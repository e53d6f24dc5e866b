package http

import "time"

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core services
	Properties PropertyService
	Search     SearchService
	Catalog    CatalogService

	// Task queue (optional)
	TaskQueue TaskQueue

	// Health checks
	Database    Pinger
	SearchIndex Pinger
	IndexSync   SyncStats

	// Indexed document lookups and counts (optional)
	IndexDocuments IndexDocuments

	// Periodic reconciliation, reported by /health (optional)
	Reconcile ReconcileSchedule

	// RequestTimeout bounds every API request. Zero disables it.
	RequestTimeout time.Duration

	// Application info
	Version string
}
