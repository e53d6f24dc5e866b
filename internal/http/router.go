package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(securityHeaders())

	healthController := NewHealthController(cfg.Database, cfg.SearchIndex, cfg.IndexSync, cfg.Version)
	if cfg.IndexDocuments != nil {
		healthController.WithDocumentCount(cfg.IndexDocuments)
	}
	if cfg.Reconcile != nil {
		healthController.WithReconcileSchedule(cfg.Reconcile)
	}
	router.GET("/health", healthController.Status)

	api := router.Group("/api")
	api.Use(requestTimeout(cfg.RequestTimeout))

	// Properties
	if cfg.Properties != nil {
		propertiesController := NewPropertiesController(cfg.Properties)
		api.GET("/properties", propertiesController.List)
		api.POST("/properties", propertiesController.Create)
		api.GET("/properties/:id", propertiesController.Get)
		api.PUT("/properties/:id", propertiesController.Update)
		api.PATCH("/properties/:id", propertiesController.Patch)
		api.DELETE("/properties/:id", propertiesController.Delete)
		api.PUT("/properties/:id/amenities/:code", propertiesController.AddAmenity)
		api.DELETE("/properties/:id/amenities/:code", propertiesController.RemoveAmenity)
		api.POST("/properties/:id/categories", propertiesController.AddCategory)
		api.DELETE("/properties/:id/categories/:categoryId", propertiesController.RemoveCategory)
	}

	// Search
	if cfg.Search != nil {
		searchController := NewSearchController(cfg.Search)
		api.GET("/_search/properties", searchController.SearchProperties)
	}
	if cfg.IndexDocuments != nil {
		documentsController := NewDocumentsController(cfg.IndexDocuments)
		api.GET("/_search/properties/:id", documentsController.Get)
	}

	// Catalog and owners
	if cfg.Catalog != nil {
		catalogController := NewCatalogController(cfg.Catalog)
		api.GET("/amenities", catalogController.ListAmenities)
		api.GET("/categories", catalogController.ListCategories)
		api.GET("/owners", catalogController.ListOwners)
		api.POST("/owners", catalogController.CreateOwner)
		api.PATCH("/owners/:id", catalogController.RenameOwner)
	}

	// Task management (only if task queue is enabled)
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/run/:type", tasksController.RunTask)
	}

	return router
}
