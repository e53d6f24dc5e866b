package indexsync

import (
	"context"
	"fmt"
	"log"
)

// LiveIDs lists the ids of all properties in the relational store.
type LiveIDs interface {
	AllIDs(ctx context.Context) ([]uint, error)
}

// IndexedIDs lists the ids of all documents in the search index.
type IndexedIDs interface {
	IDs(ctx context.Context) ([]uint, error)
}

type ReconcileResult struct {
	Live     int `json:"live"`
	Indexed  int `json:"indexed"`
	Resynced int `json:"resynced"`
	Orphans  int `json:"orphans"`
}

// Reconcile resyncs every live property and deletes documents whose
// property no longer exists, then waits for the coordinator to apply it.
func Reconcile(ctx context.Context, c *Coordinator, live LiveIDs, indexed IndexedIDs) (ReconcileResult, error) {
	var result ReconcileResult

	liveIDs, err := live.AllIDs(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list properties: %w", err)
	}
	indexedIDs, err := indexed.IDs(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list indexed documents: %w", err)
	}
	result.Live = len(liveIDs)
	result.Indexed = len(indexedIDs)

	alive := make(map[uint]bool, len(liveIDs))
	for _, id := range liveIDs {
		alive[id] = true
		if err := c.QueueResync(ctx, id); err != nil {
			return result, fmt.Errorf("failed to queue resync of property %d: %w", id, err)
		}
		result.Resynced++
	}
	for _, id := range indexedIDs {
		if !alive[id] {
			if err := c.QueueDelete(ctx, id); err != nil {
				return result, fmt.Errorf("failed to queue removal of document %d: %w", id, err)
			}
			result.Orphans++
		}
	}

	if err := c.Flush(ctx); err != nil {
		return result, fmt.Errorf("failed to flush index sync: %w", err)
	}

	log.Printf("[INDEX] Reconciled %d properties against %d documents (%d orphans removed)",
		result.Live, result.Indexed, result.Orphans)
	return result, nil
}

// Reconciler binds Reconcile to its collaborators for scheduled runs.
type Reconciler struct {
	coordinator *Coordinator
	live        LiveIDs
	indexed     IndexedIDs
}

func NewReconciler(c *Coordinator, live LiveIDs, indexed IndexedIDs) *Reconciler {
	return &Reconciler{coordinator: c, live: live, indexed: indexed}
}

func (r *Reconciler) Reconcile(ctx context.Context) (ReconcileResult, error) {
	return Reconcile(ctx, r.coordinator, r.live, r.indexed)
}
