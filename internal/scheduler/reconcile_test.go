package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/rentals/internal/tasks"
)

type recordingEnqueuer struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (r *recordingEnqueuer) Enqueue(task backlite.Task) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	r.names = append(r.names, task.Config().Name)
	return "task-1", nil
}

func (r *recordingEnqueuer) enqueued() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("*/30 * * * *"))
	assert.NoError(t, ValidateSchedule("0 3 * * *"))
	assert.Error(t, ValidateSchedule("every 30 minutes"))
	assert.Error(t, ValidateSchedule("* * * * * *"))
}

func TestReconcileScheduler_StartStop(t *testing.T) {
	s := NewReconcileScheduler(&recordingEnqueuer{}, "*/30 * * * *", "0 3 * * *")

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.running())

	next := s.NextRunTime()
	require.NotNil(t, next)
	assert.True(t, next.After(time.Now()))
	assert.LessOrEqual(t, time.Until(*next), 30*time.Minute)

	// Starting twice is a no-op
	require.NoError(t, s.Start(context.Background()))

	s.Stop()
	assert.False(t, s.running())
	assert.Nil(t, s.NextRunTime())
}

func TestReconcileScheduler_InvalidSchedule(t *testing.T) {
	s := NewReconcileScheduler(&recordingEnqueuer{}, "not a schedule", "")

	err := s.Start(context.Background())
	assert.ErrorContains(t, err, "invalid cron schedule")
	assert.False(t, s.running())
}

func TestReconcileScheduler_StopsWithContext(t *testing.T) {
	s := NewReconcileScheduler(&recordingEnqueuer{}, "*/30 * * * *", "")

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.running() }, 2*time.Second, 10*time.Millisecond)
}

func TestReconcileScheduler_JobsEnqueueTasks(t *testing.T) {
	enqueuer := &recordingEnqueuer{}
	s := NewReconcileScheduler(enqueuer, "*/30 * * * *", "0 3 * * *")

	s.enqueue(tasks.ReconcileIndexTask{})
	s.enqueue(tasks.CleanupOrphanCategoriesTask{})

	assert.Equal(t, []string{"reconcile_index", "cleanup_orphan_categories"}, enqueuer.enqueued())
}

func TestReconcileScheduler_EnqueueFailureIsLogged(t *testing.T) {
	enqueuer := &recordingEnqueuer{err: errors.New("queue closed")}
	s := NewReconcileScheduler(enqueuer, "*/30 * * * *", "")

	assert.NotPanics(t, func() { s.enqueue(tasks.ReconcileIndexTask{}) })
	assert.Empty(t, enqueuer.enqueued())
}
