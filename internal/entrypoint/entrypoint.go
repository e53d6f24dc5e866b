package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/rentals/internal/config"
	"github.com/mrlokans/rentals/internal/database"
	"github.com/mrlokans/rentals/internal/database/catalog"
	"github.com/mrlokans/rentals/internal/database/owners"
	"github.com/mrlokans/rentals/internal/database/properties"
	http_controllers "github.com/mrlokans/rentals/internal/http"
	"github.com/mrlokans/rentals/internal/indexsync"
	"github.com/mrlokans/rentals/internal/scheduler"
	"github.com/mrlokans/rentals/internal/search"
	"github.com/mrlokans/rentals/internal/searchindex"
	"github.com/mrlokans/rentals/internal/services"
	"github.com/mrlokans/rentals/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop accepting requests first so no new writes reach the coordinator.
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

// stores holds the opened backing stores and the repositories over them.
type stores struct {
	db         *database.Database
	index      *searchindex.Store
	properties *properties.Repository
	catalog    *catalog.Repository
	owners     *owners.Repository
}

func openStores(cfg *config.Config) (*stores, error) {
	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	index, err := searchindex.Open(cfg.SearchIndex.Path)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &stores{
		db:         db,
		index:      index,
		properties: properties.NewRepository(db.DB),
		catalog:    catalog.NewRepository(db.DB),
		owners:     owners.NewRepository(db.DB),
	}, nil
}

func (s *stores) close() {
	if err := s.index.Close(); err != nil {
		log.Printf("Error closing search index: %v", err)
	}
	if err := s.db.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

func newCoordinator(cfg *config.Config, s *stores, cache *search.Cache) *indexsync.Coordinator {
	var opts []indexsync.Option
	if cache != nil {
		opts = append(opts, indexsync.WithInvalidator(cache))
	}
	return indexsync.New(s.properties, s.index, indexsync.Config{
		Shards:    cfg.IndexSync.Shards,
		QueueSize: cfg.IndexSync.QueueSize,
		Timeout:   cfg.IndexSync.OpTimeout,
	}, opts...)
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Rentals v%s", version)

	s, err := openStores(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer s.close()

	// Optional Redis cache in front of the search index
	cache := search.NewCache(search.CacheConfig{
		Enabled:     cfg.Cache.Enabled,
		Addr:        cfg.Cache.Addr,
		Password:    cfg.Cache.Password,
		DB:          cfg.Cache.DB,
		TTL:         cfg.Cache.TTL,
		Prefix:      cfg.Cache.Prefix,
		DialTimeout: 2 * time.Second,
	})
	if cache != nil {
		log.Printf("Search cache enabled at %s", cfg.Cache.Addr)
		defer cache.Close()
	}
	facade := search.NewFacade(s.index, search.WithCache(cache))

	coordinator := newCoordinator(cfg, s, cache)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(tasks.Config{
			Path:            cfg.Tasks.Path,
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewReindexPropertyQueue(coordinator),
			tasks.NewReconcileIndexQueue(indexsync.NewReconciler(coordinator, s.properties, s.index)),
			tasks.NewCleanupOrphanCategoriesQueue(s.catalog),
		)

		if cfg.IndexSync.RetryTasks {
			coordinator.SetRetrier(tasks.NewIndexRetrier(taskClient))
		}
	}

	coordinator.Start()

	if taskClient != nil {
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Periodic reconciliation runs through the task queue
	var reconcileScheduler *scheduler.ReconcileScheduler
	if cfg.Reconcile.Enabled && taskClient != nil {
		reconcileScheduler = scheduler.NewReconcileScheduler(taskClient, cfg.Reconcile.Schedule, cfg.Reconcile.CleanupSchedule)
		if err := reconcileScheduler.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start reconcile scheduler: %v", err)
		}
	} else if cfg.Reconcile.Enabled {
		log.Printf("WARNING: index reconciliation requires the task queue. Set 'TASKS_ENABLED=true' to enable it.")
	}

	service := services.NewPropertyService(s.properties, s.catalog, s.owners, coordinator, facade)

	routerCfg := http_controllers.RouterConfig{
		Properties:     service,
		Search:         service,
		Catalog:        service,
		Database:       s.db,
		SearchIndex:    s.index,
		IndexSync:      coordinator,
		IndexDocuments: s.index,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Version:        version,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}
	if reconcileScheduler != nil {
		routerCfg.Reconcile = reconcileScheduler
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if reconcileScheduler != nil {
			reconcileScheduler.Stop()
		}
		// Drain pending index operations while the retry queue is still up.
		if !coordinator.Stop(ctx) {
			log.Printf("[INDEX] Pending index operations were abandoned; the next reconciliation will repair them")
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

// Reindex resynchronizes the whole search index with the relational store
// and exits. No server, queue or scheduler is started.
func Reindex(cfg *config.Config) error {
	s, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer s.close()

	coordinator := newCoordinator(cfg, s, nil)
	coordinator.Start()

	ctx := context.Background()
	result, err := indexsync.Reconcile(ctx, coordinator, s.properties, s.index)

	stopCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Global.ShutdownTimeoutInSeconds)*time.Second)
	defer cancel()
	coordinator.Stop(stopCtx)

	if err != nil {
		return fmt.Errorf("reconcile index: %w", err)
	}

	stats := coordinator.Stats()
	log.Printf("[INDEX] Reindex complete: %d live, %d indexed before, %d orphans removed, %d failed",
		result.Live, result.Indexed, result.Orphans, stats.Failed)
	if stats.Failed > 0 {
		return fmt.Errorf("%d index operations failed", stats.Failed)
	}
	return nil
}
