package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// OrphanCategoriesCleaner provides the ability to delete orphan categories.
type OrphanCategoriesCleaner interface {
	DeleteOrphanCategories() (int64, error)
}

// CleanupOrphanCategoriesTask removes categories no property uses.
type CleanupOrphanCategoriesTask struct{}

// Config returns the queue configuration for cleanup tasks.
func (t CleanupOrphanCategoriesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_orphan_categories",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupOrphanCategoriesProcessor creates a processor function for CleanupOrphanCategoriesTask.
func CleanupOrphanCategoriesProcessor(cleaner OrphanCategoriesCleaner) backlite.QueueProcessor[CleanupOrphanCategoriesTask] {
	return func(ctx context.Context, task CleanupOrphanCategoriesTask) error {
		if cleaner == nil {
			return fmt.Errorf("orphan categories cleaner not configured")
		}

		deleted, err := cleaner.DeleteOrphanCategories()
		if err != nil {
			return fmt.Errorf("cleanup orphan categories: %w", err)
		}

		log.Printf("[TASK] Cleaned up %d orphan categories", deleted)
		return nil
	}
}

// NewCleanupOrphanCategoriesQueue creates a backlite queue for category cleanup tasks.
func NewCleanupOrphanCategoriesQueue(cleaner OrphanCategoriesCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupOrphanCategoriesProcessor(cleaner))
}
