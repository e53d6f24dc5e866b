package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/rentals/internal/database"
	"github.com/mrlokans/rentals/internal/database/catalog"
	"github.com/mrlokans/rentals/internal/database/owners"
	"github.com/mrlokans/rentals/internal/database/properties"
	"github.com/mrlokans/rentals/internal/http"
	"github.com/mrlokans/rentals/internal/indexsync"
	"github.com/mrlokans/rentals/internal/scheduler"
	"github.com/mrlokans/rentals/internal/search"
	"github.com/mrlokans/rentals/internal/searchindex"
	"github.com/mrlokans/rentals/internal/services"
	"github.com/mrlokans/rentals/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ services.PropertyStore = (*properties.Repository)(nil)
var _ services.CatalogStore = (*catalog.Repository)(nil)
var _ services.OwnerStore = (*owners.Repository)(nil)

// =============================================================================
// Index Synchronization
// =============================================================================

var _ indexsync.DocumentSource = (*properties.Repository)(nil)
var _ indexsync.Index = (*searchindex.Store)(nil)
var _ indexsync.LiveIDs = (*properties.Repository)(nil)
var _ indexsync.IndexedIDs = (*searchindex.Store)(nil)
var _ indexsync.Invalidator = (*search.Cache)(nil)
var _ indexsync.Retrier = (*tasks.IndexRetrier)(nil)
var _ services.IndexNotifier = (*indexsync.Coordinator)(nil)

// =============================================================================
// Search
// =============================================================================

var _ search.Index = (*searchindex.Store)(nil)
var _ services.Searcher = (*search.Facade)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

var _ tasks.PropertySyncer = (*indexsync.Coordinator)(nil)
var _ tasks.IndexReconciler = (*indexsync.Reconciler)(nil)
var _ tasks.OrphanCategoriesCleaner = (*catalog.Repository)(nil)
var _ scheduler.TaskEnqueuer = (*tasks.Client)(nil)

// =============================================================================
// HTTP Layer
// =============================================================================

var _ http.PropertyService = (*services.PropertyService)(nil)
var _ http.SearchService = (*services.PropertyService)(nil)
var _ http.CatalogService = (*services.PropertyService)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
var _ http.Pinger = (*database.Database)(nil)
var _ http.Pinger = (*searchindex.Store)(nil)
var _ http.SyncStats = (*indexsync.Coordinator)(nil)
var _ http.IndexDocuments = (*searchindex.Store)(nil)
var _ http.ReconcileSchedule = (*scheduler.ReconcileScheduler)(nil)
