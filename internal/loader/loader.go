package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ziadkadry99/doxnav/internal/fetch"
)

// ErrShardLoad wraps every fetch or parse failure. Failed shards are not
// retried for the lifetime of the cache.
var ErrShardLoad = errors.New("shard load failed")

// ParseFunc turns a fetched script into its typed payload.
type ParseFunc[T any] func(name string, data []byte) (T, error)

// Cache loads named shards at most once. Concurrent requests for a shard that
// is in flight wait for that fetch instead of starting another one. Results
// are kept forever; the cache is append-only.
type Cache[T any] struct {
	fetcher fetch.Fetcher
	parse   ParseFunc[T]
	log     *zap.Logger

	group   singleflight.Group
	mu      sync.RWMutex
	loaded  map[string]T
	failed  map[string]error
	fetches atomic.Int64
}

// New creates a cache backed by f. A nil logger disables logging.
func New[T any](f fetch.Fetcher, parse ParseFunc[T], log *zap.Logger) *Cache[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache[T]{
		fetcher: f,
		parse:   parse,
		log:     log,
		loaded:  make(map[string]T),
		failed:  make(map[string]error),
	}
}

// Load returns the shard called name, fetching it if nobody has yet. If ctx
// ends first the caller stops waiting, but the shared fetch keeps going for
// the other waiters and still populates the cache.
func (c *Cache[T]) Load(ctx context.Context, name string) (T, error) {
	if v, err, ok := c.lookup(name); ok {
		return v, err
	}

	ch := c.group.DoChan(name, func() (any, error) {
		if v, err, ok := c.lookup(name); ok {
			return v, err
		}
		return c.fill(context.WithoutCancel(ctx), name)
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// Peek returns the shard if it is already loaded. It never fetches.
func (c *Cache[T]) Peek(name string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.loaded[name]
	return v, ok
}

// Fetches reports how many fetches the cache has issued.
func (c *Cache[T]) Fetches() int64 {
	return c.fetches.Load()
}

func (c *Cache[T]) lookup(name string) (T, error, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.loaded[name]; ok {
		return v, nil, true
	}
	if err, ok := c.failed[name]; ok {
		var zero T
		return zero, err, true
	}
	var zero T
	return zero, nil, false
}

func (c *Cache[T]) fill(ctx context.Context, name string) (T, error) {
	c.fetches.Add(1)
	c.log.Debug("fetching shard", zap.String("shard", name))

	var zero T
	data, err := c.fetcher.Fetch(ctx, name)
	if err != nil {
		return zero, c.fail(name, err)
	}
	v, err := c.parse(name, data)
	if err != nil {
		return zero, c.fail(name, err)
	}

	c.mu.Lock()
	c.loaded[name] = v
	c.mu.Unlock()
	return v, nil
}

func (c *Cache[T]) fail(name string, cause error) error {
	err := fmt.Errorf("%w: %s: %w", ErrShardLoad, name, cause)
	c.log.Warn("shard unavailable", zap.String("shard", name), zap.Error(cause))

	c.mu.Lock()
	c.failed[name] = err
	c.mu.Unlock()
	return err
}
