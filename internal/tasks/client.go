// Package tasks runs the durable side of index synchronization on backlite:
// per-property reindex retries, full reconciliation and category cleanup.
//
// The queue lives in its own SQLite file so it keeps working whichever
// relational driver is configured, and so a failed index write can still
// be recorded when the relational store is the thing that is struggling.
package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// Client owns the queue database and the backlite dispatcher.
type Client struct {
	queue  *backlite.Client
	db     *sql.DB
	config Config

	mu      sync.Mutex
	running bool
}

func NewClient(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	db, err := openQueueDB(cfg)
	if err != nil {
		return nil, err
	}

	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          &stdLogger{},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create task queue: %w", err)
	}
	if err := queue.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to install task queue schema: %w", err)
	}

	log.Printf("[TASK] Task queue initialized at %s", cfg.Path)
	return &Client{queue: queue, db: db, config: cfg}, nil
}

// openQueueDB opens the queue file in WAL mode with room for every worker
// plus the enqueuing request handlers.
func openQueueDB(cfg Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Workers + 5)
	db.SetMaxIdleConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// Register adds queues. Call it before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.queue.Register(q)
	}
}

// Start launches the workers and returns immediately.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true

	c.queue.Start(ctx)
	log.Printf("[TASK] Task queue started with %d workers", c.config.Workers)
}

// Stop waits for running tasks. It returns false if ctx expired first;
// unfinished tasks stay in the queue and are released after ReleaseAfter.
func (c *Client) Stop(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return true
	}
	c.running = false

	if !c.queue.Stop(ctx) {
		log.Println("[TASK] Task queue stopped before running tasks finished")
		return false
	}
	log.Println("[TASK] Task queue stopped")
	return true
}

// Close closes the queue database. Call it after Stop.
func (c *Client) Close() error {
	return c.db.Close()
}

// Add starts a batch insert of tasks.
func (c *Client) Add(tasks ...backlite.Task) *backlite.TaskAddOp {
	return c.queue.Add(tasks...)
}

// Enqueue stores one task and returns its id. Tasks can be enqueued
// before Start; they run once the workers are up.
func (c *Client) Enqueue(task backlite.Task) (string, error) {
	ids, err := c.queue.Add(task).Save()
	if err != nil {
		return "", fmt.Errorf("failed to enqueue %s: %w", task.Config().Name, err)
	}
	return ids[0], nil
}

func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.queue.Status(ctx, taskID)
}

// stdLogger routes backlite's logs through the standard logger.
type stdLogger struct{}

func (*stdLogger) Info(message string, params ...any) {
	log.Printf("[TASK] "+message, params...)
}

func (*stdLogger) Error(message string, params ...any) {
	log.Printf("[TASK ERROR] "+message, params...)
}
