package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// PropertySyncer synchronously resyncs one property into the search index.
type PropertySyncer interface {
	Sync(ctx context.Context, id uint) error
}

// ReindexPropertyTask retries propagation of a single property whose index
// write failed.
type ReindexPropertyTask struct {
	PropertyID uint `json:"property_id"`
}

// Config returns the queue configuration for reindex tasks.
func (t ReindexPropertyTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "reindex_property",
		MaxAttempts: 5,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ReindexPropertyProcessor creates a processor function for ReindexPropertyTask.
// The resync goes through the coordinator's per-id queue, so it cannot
// overtake a newer change to the same property.
func ReindexPropertyProcessor(syncer PropertySyncer) backlite.QueueProcessor[ReindexPropertyTask] {
	return func(ctx context.Context, task ReindexPropertyTask) error {
		if syncer == nil {
			return fmt.Errorf("property syncer not configured")
		}
		if err := syncer.Sync(ctx, task.PropertyID); err != nil {
			return fmt.Errorf("reindex property %d: %w", task.PropertyID, err)
		}

		log.Printf("[TASK] Reindexed property %d", task.PropertyID)
		return nil
	}
}

// NewReindexPropertyQueue creates a backlite queue for reindex tasks.
func NewReindexPropertyQueue(syncer PropertySyncer) backlite.Queue {
	return backlite.NewQueue(ReindexPropertyProcessor(syncer))
}

// IndexRetrier turns failed index propagations into ReindexPropertyTasks.
type IndexRetrier struct {
	client *Client
}

func NewIndexRetrier(client *Client) *IndexRetrier {
	return &IndexRetrier{client: client}
}

// RetryLater enqueues a durable reindex of id.
func (r *IndexRetrier) RetryLater(id uint) error {
	taskID, err := r.client.Enqueue(ReindexPropertyTask{PropertyID: id})
	if err != nil {
		return err
	}
	log.Printf("[TASK] Scheduled reindex of property %d (task %s)", id, taskID)
	return nil
}
