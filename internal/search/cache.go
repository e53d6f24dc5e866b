package search

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mrlokans/rentals/internal/paging"
)

const (
	cacheKeySeparator = ":"
	generationKey     = "gen"
)

// CacheConfig configures the Redis search result cache.
type CacheConfig struct {
	Enabled     bool
	Addr        string
	Password    string
	DB          int
	TTL         time.Duration
	Prefix      string
	DialTimeout time.Duration
}

// Cache stores search pages in Redis. Entries are keyed by a generation
// counter that every index write bumps, so stale pages are never read
// after the write that made them stale. A nil *Cache is a valid, disabled
// cache.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

// NewCache connects to Redis. Returns nil when the cache is disabled.
func NewCache(cfg CacheConfig) *Cache {
	if !cfg.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
		MaxRetries:  -1,
	})
	return NewCacheWithClient(client, cfg.TTL, cfg.Prefix)
}

func NewCacheWithClient(client redis.UniversalClient, ttl time.Duration, prefix string) *Cache {
	if prefix == "" {
		prefix = "rentals:search"
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl, prefix: prefix}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// Generation identifies the cache contents a lookup saw. A page computed
// after a lookup must be stored under that lookup's generation, so a write
// invalidated in between leaves the page unreachable.
type Generation int64

// noGeneration is returned when the counter could not be read; Put skips it.
const noGeneration Generation = -1

// Get returns a cached page and the generation it looked in. Any Redis
// failure is treated as a miss.
func (c *Cache) Get(ctx context.Context, query string, page paging.Request) (*Page, Generation, bool) {
	if c == nil {
		return nil, noGeneration, false
	}
	gen, err := c.generation(ctx)
	if err != nil {
		log.Printf("[SEARCH] cache unavailable: %v", err)
		return nil, noGeneration, false
	}
	raw, err := c.client.Get(ctx, c.key(gen, query, page)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[SEARCH] cache read failed: %v", err)
		}
		return nil, gen, false
	}
	p, err := decodePage(raw)
	if err != nil {
		log.Printf("[SEARCH] dropping undecodable cache entry: %v", err)
		return nil, gen, false
	}
	return p, gen, true
}

// Put stores a page under gen, the generation returned by the Get that
// missed. Failures are logged only.
func (c *Cache) Put(ctx context.Context, gen Generation, query string, page paging.Request, p *Page) {
	if c == nil || gen == noGeneration {
		return
	}
	raw, err := encodePage(p)
	if err != nil {
		log.Printf("[SEARCH] cache encode failed: %v", err)
		return
	}
	if err := c.client.Set(ctx, c.key(gen, query, page), raw, c.ttl).Err(); err != nil {
		log.Printf("[SEARCH] cache write failed: %v", err)
	}
}

// Invalidate makes every cached page unreachable.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Incr(ctx, c.prefix+cacheKeySeparator+generationKey).Err()
}

func (c *Cache) generation(ctx context.Context) (Generation, error) {
	gen, err := c.client.Get(ctx, c.prefix+cacheKeySeparator+generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return noGeneration, err
	}
	return Generation(gen), nil
}

func (c *Cache) key(gen Generation, query string, page paging.Request) string {
	return c.prefix + cacheKeySeparator + strconv.FormatInt(int64(gen), 10) + cacheKeySeparator + pageHash(query, page)
}

// pageHash identifies a (query, page) pair. The query is hashed verbatim:
// whitespace inside a quoted phrase is part of the match.
func pageHash(query string, page paging.Request) string {
	var b strings.Builder
	b.WriteString(strconv.Quote(query))
	fmt.Fprintf(&b, "|%d|%d", page.Offset, page.Limit)
	for _, o := range page.Sort {
		fmt.Fprintf(&b, "|%s:%t", o.Field, o.Desc)
	}
	return strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}

func encodePage(p *Page) ([]byte, error) {
	return msgpack.Marshal(p)
}

func decodePage(raw []byte) (*Page, error) {
	var p Page
	if err := msgpack.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
