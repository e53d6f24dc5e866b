package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/rentals/internal/tasks"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// TaskEnqueuer persists a task for the background workers.
type TaskEnqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// ReconcileScheduler periodically enqueues index reconciliation and
// orphan category cleanup.
type ReconcileScheduler struct {
	enqueuer          TaskEnqueuer
	reconcileSchedule string
	cleanupSchedule   string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewReconcileScheduler creates a new scheduler instance. An empty
// cleanupSchedule disables category cleanup.
func NewReconcileScheduler(enqueuer TaskEnqueuer, reconcileSchedule, cleanupSchedule string) *ReconcileScheduler {
	return &ReconcileScheduler{
		enqueuer:          enqueuer,
		reconcileSchedule: reconcileSchedule,
		cleanupSchedule:   cleanupSchedule,
		cron:              cron.New(cron.WithParser(cronParser)),
	}
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// Start registers the jobs and starts the cron loop.
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(s.reconcileSchedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.reconcileSchedule, err)
	}

	entryID, err := s.cron.AddFunc(s.reconcileSchedule, func() {
		s.enqueue(tasks.ReconcileIndexTask{})
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reconcile job: %w", err)
	}
	s.entryID = entryID

	if s.cleanupSchedule != "" {
		if _, err := s.cron.AddFunc(s.cleanupSchedule, func() {
			s.enqueue(tasks.CleanupOrphanCategoriesTask{})
		}); err != nil {
			s.cron.Remove(entryID)
			return fmt.Errorf("failed to schedule category cleanup job: %w", err)
		}
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Reconcile scheduler: started with schedule '%s'. Next run: %v",
		s.reconcileSchedule, s.cron.Entry(entryID).Next)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *ReconcileScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	for _, entry := range s.cron.Entries() {
		s.cron.Remove(entry.ID)
	}
	s.cancelFunc()
	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Reconcile scheduler: stopped")
}

func (s *ReconcileScheduler) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next reconciliation will be enqueued.
func (s *ReconcileScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return nil
	}
	t := entry.Next
	return &t
}

func (s *ReconcileScheduler) enqueue(task backlite.Task) {
	id, err := s.enqueuer.Enqueue(task)
	if err != nil {
		log.Printf("Reconcile scheduler: failed to enqueue %s: %v", task.Config().Name, err)
		return
	}
	log.Printf("Reconcile scheduler: enqueued %s (task %s)", task.Config().Name, id)
}
