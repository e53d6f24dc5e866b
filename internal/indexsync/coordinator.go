// Package indexsync mirrors committed property changes into the search index.
//
// Writers call OnUpserted or OnDeleted after their transaction committed.
// The call only enqueues work and never waits for queue space: when a shard
// is full the id is handed to the Retrier (or left for reconciliation).
// Index failures are logged, counted and handed to the Retrier too, and
// never reach the writer. Bulk callers that want backpressure use
// QueueResync and QueueDelete instead.
//
// Operations for one property id are applied in the order they were
// submitted. Every id hashes to a fixed shard, and each shard is drained by
// a single goroutine, so different ids proceed in parallel while one id is
// strictly serialized. An upsert does not trust the entity it was given:
// it re-reads the committed state at processing time, which makes stale or
// reordered notifications harmless. If the property is gone by then, its
// document is deleted instead.
package indexsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mrlokans/rentals/internal/entities"
	"github.com/mrlokans/rentals/internal/loader"
	"github.com/mrlokans/rentals/internal/searchindex"
)

// ErrNotRunning is returned by Flush when the coordinator is not started.
var ErrNotRunning = errors.New("index sync coordinator is not running")

// ErrQueueFull is reported for notifications dropped because their shard
// had no room.
var ErrQueueFull = errors.New("index sync queue is full")

// DocumentSource reads the committed relational state of a property.
// It returns loader.ErrNotFound when the property no longer exists.
type DocumentSource interface {
	LoadDocument(ctx context.Context, id uint) (*searchindex.Document, error)
}

// Index is the write side of the search index.
type Index interface {
	Upsert(ctx context.Context, doc searchindex.Document) error
	Delete(ctx context.Context, id uint) error
}

// Retrier schedules a later resync of an id whose propagation failed.
type Retrier interface {
	RetryLater(id uint) error
}

// Invalidator is notified after every successful index write.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Config struct {
	Shards    int
	QueueSize int
	Timeout   time.Duration // per index operation
}

func DefaultConfig() Config {
	return Config{
		Shards:    8,
		QueueSize: 256,
		Timeout:   10 * time.Second,
	}
}

type Stats struct {
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
	Pending   int   `json:"pending"`
}

type opKind int

const (
	opUpsert opKind = iota
	opDelete
	opBarrier
)

func (k opKind) String() string {
	switch k {
	case opUpsert:
		return "upsert"
	case opDelete:
		return "delete"
	default:
		return "barrier"
	}
}

type op struct {
	kind   opKind
	id     uint
	done   chan struct{}
	result chan error // set by Sync; failures are reported here instead of the retrier
}

type Coordinator struct {
	source      DocumentSource
	index       Index
	retrier     Retrier
	invalidator Invalidator
	cfg         Config

	mu      sync.RWMutex
	running bool
	shards  []chan op
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

type Option func(*Coordinator)

// WithRetrier hands failed ids to r.
func WithRetrier(r Retrier) Option {
	return func(c *Coordinator) {
		c.retrier = r
	}
}

// WithInvalidator notifies inv after each successful index write.
func WithInvalidator(inv Invalidator) Option {
	return func(c *Coordinator) {
		c.invalidator = inv
	}
}

func New(source DocumentSource, index Index, cfg Config, opts ...Option) *Coordinator {
	defaults := DefaultConfig()
	if cfg.Shards <= 0 {
		cfg.Shards = defaults.Shards
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaults.QueueSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}

	c := &Coordinator{
		source: source,
		index:  index,
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetRetrier replaces the retrier. The task queue needs the coordinator
// to exist before it can be built, so it is attached after New.
func (c *Coordinator) SetRetrier(r Retrier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retrier = r
}

// Start launches the shard workers. Calling Start twice is a no-op.
func (c *Coordinator) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.shards = make([]chan op, c.cfg.Shards)
	for i := range c.shards {
		ch := make(chan op, c.cfg.QueueSize)
		c.shards[i] = ch
		c.wg.Add(1)
		go c.work(ch)
	}
	c.running = true

	log.Printf("[INDEX] Sync coordinator started with %d shards", c.cfg.Shards)
}

// Stop stops accepting work and waits for queued operations to drain.
// If ctx expires first, in-flight operations are cancelled and Stop
// returns false.
func (c *Coordinator) Stop(ctx context.Context) bool {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return true
	}
	c.running = false
	for _, ch := range c.shards {
		close(ch)
	}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.cancel()
		log.Println("[INDEX] Sync coordinator stopped")
		return true
	case <-ctx.Done():
		c.cancel()
		<-done
		log.Println("[INDEX] Sync coordinator stopped before its queues drained")
		return false
	}
}

// OnUpserted schedules a resync of p after its transaction committed.
func (c *Coordinator) OnUpserted(p *entities.Property) {
	if p == nil || p.ID == 0 {
		log.Println("[INDEX] Ignoring upsert notification for unsaved property")
		return
	}
	c.enqueue(op{kind: opUpsert, id: p.ID})
}

// OnDeleted schedules removal of the document for id.
func (c *Coordinator) OnDeleted(id uint) {
	c.enqueue(op{kind: opDelete, id: id})
}

// Resync re-reads id from the relational store and writes or deletes its
// document accordingly.
func (c *Coordinator) Resync(id uint) {
	c.enqueue(op{kind: opUpsert, id: id})
}

// QueueResync is Resync for bulk callers: it waits for room in the shard
// instead of dropping the operation, and gives up when ctx is done.
func (c *Coordinator) QueueResync(ctx context.Context, id uint) error {
	return c.submit(ctx, op{kind: opUpsert, id: id})
}

// QueueDelete is OnDeleted with the waiting behaviour of QueueResync.
func (c *Coordinator) QueueDelete(ctx context.Context, id uint) error {
	return c.submit(ctx, op{kind: opDelete, id: id})
}

// Sync queues a resync of id behind any pending operations for it and
// waits for the outcome. Unlike Resync, a failure is returned to the
// caller and not handed to the retrier.
func (c *Coordinator) Sync(ctx context.Context, id uint) error {
	result := make(chan error, 1)
	if err := c.submit(ctx, op{kind: opUpsert, id: id, result: result}); err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush waits until every operation enqueued before the call is processed.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.RLock()
	if !c.running {
		c.mu.RUnlock()
		return ErrNotRunning
	}
	barriers := make([]chan struct{}, len(c.shards))
	for i, ch := range c.shards {
		barriers[i] = make(chan struct{})
		select {
		case ch <- op{kind: opBarrier, done: barriers[i]}:
		case <-ctx.Done():
			c.mu.RUnlock()
			return ctx.Err()
		}
	}
	c.mu.RUnlock()

	for _, done := range barriers {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (c *Coordinator) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pending := 0
	for _, ch := range c.shards {
		pending += len(ch)
	}
	return Stats{
		Processed: c.processed.Load(),
		Failed:    c.failed.Load(),
		Dropped:   c.dropped.Load(),
		Pending:   pending,
	}
}

// enqueue never blocks. Operations that find their shard full are dropped
// and handed to the retrier.
func (c *Coordinator) enqueue(o op) {
	if o.id == 0 {
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.running {
		log.Printf("[INDEX] Coordinator not running, %s of property %d deferred", o.kind, o.id)
		c.fail(o, ErrNotRunning)
		return
	}

	select {
	case c.shards[o.id%uint(len(c.shards))] <- o:
	default:
		c.dropped.Add(1)
		c.fail(o, ErrQueueFull)
	}
}

// submit waits for room in the shard until ctx is done.
func (c *Coordinator) submit(ctx context.Context, o op) error {
	if o.id == 0 {
		return fmt.Errorf("cannot sync property without id")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.running {
		return ErrNotRunning
	}

	select {
	case c.shards[o.id%uint(len(c.shards))] <- o:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) work(ch <-chan op) {
	defer c.wg.Done()
	for o := range ch {
		if o.kind == opBarrier {
			close(o.done)
			continue
		}
		c.process(o)
	}
}

func (c *Coordinator) process(o op) {
	ctx, cancel := context.WithTimeout(c.ctx, c.cfg.Timeout)
	defer cancel()

	var err error
	switch o.kind {
	case opUpsert:
		err = c.upsert(ctx, o.id)
	case opDelete:
		err = c.index.Delete(ctx, o.id)
	}
	if o.result != nil {
		o.result <- err
	}
	if err != nil {
		c.fail(o, err)
		return
	}

	c.processed.Add(1)
	if c.invalidator != nil {
		if err := c.invalidator.Invalidate(ctx); err != nil {
			log.Printf("[INDEX] Failed to invalidate search cache: %v", err)
		}
	}
}

func (c *Coordinator) upsert(ctx context.Context, id uint) error {
	doc, err := c.source.LoadDocument(ctx, id)
	if errors.Is(err, loader.ErrNotFound) {
		return c.index.Delete(ctx, id)
	}
	if err != nil {
		return err
	}
	return c.index.Upsert(ctx, *doc)
}

func (c *Coordinator) fail(o op, err error) {
	c.failed.Add(1)
	log.Printf("[INDEX] Failed to %s property %d: %v", o.kind, o.id, err)

	if c.retrier == nil || o.result != nil {
		return
	}
	if rerr := c.retrier.RetryLater(o.id); rerr != nil {
		log.Printf("[INDEX] Failed to schedule retry for property %d: %v", o.id, rerr)
	}
}
