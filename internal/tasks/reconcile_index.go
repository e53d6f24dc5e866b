package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/rentals/internal/indexsync"
)

// IndexReconciler runs a full comparison of the relational store and the
// search index.
type IndexReconciler interface {
	Reconcile(ctx context.Context) (indexsync.ReconcileResult, error)
}

// ReconcileIndexTask resyncs every property and removes orphan documents.
type ReconcileIndexTask struct{}

// Config returns the queue configuration for reconciliation tasks.
func (t ReconcileIndexTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "reconcile_index",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ReconcileIndexProcessor creates a processor function for ReconcileIndexTask.
func ReconcileIndexProcessor(reconciler IndexReconciler) backlite.QueueProcessor[ReconcileIndexTask] {
	return func(ctx context.Context, task ReconcileIndexTask) error {
		if reconciler == nil {
			return fmt.Errorf("index reconciler not configured")
		}

		result, err := reconciler.Reconcile(ctx)
		if err != nil {
			return fmt.Errorf("reconcile index: %w", err)
		}

		log.Printf("[TASK] Reconciled index: %d properties, %d orphan documents removed",
			result.Live, result.Orphans)
		return nil
	}
}

// NewReconcileIndexQueue creates a backlite queue for reconciliation tasks.
func NewReconcileIndexQueue(reconciler IndexReconciler) backlite.Queue {
	return backlite.NewQueue(ReconcileIndexProcessor(reconciler))
}
