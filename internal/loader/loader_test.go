package loader

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ziadkadry99/doxnav/internal/fetch"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func upper(name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty")
	}
	return strings.ToUpper(string(data)), nil
}

// gatedFetcher blocks every fetch until release is closed.
type gatedFetcher struct {
	mu      sync.Mutex
	calls   map[string]int
	started chan string
	release chan struct{}
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{
		calls:   make(map[string]int),
		started: make(chan string, 16),
		release: make(chan struct{}),
	}
}

func (g *gatedFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	g.mu.Lock()
	g.calls[name]++
	g.mu.Unlock()
	g.started <- name
	<-g.release
	return []byte("payload:" + name), nil
}

func (g *gatedFetcher) count(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[name]
}

func TestCache_ConcurrentLoadsShareOneFetch(t *testing.T) {
	f := newGatedFetcher()
	c := New(f, upper, nil)

	const waiters = 8
	var wg sync.WaitGroup
	results := make([]string, waiters)
	errs := make([]error, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Load(context.Background(), "shardX")
		}(i)
	}

	<-f.started
	close(f.release)
	wg.Wait()

	for i := 0; i < waiters; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "PAYLOAD:SHARDX", results[i])
	}
	assert.Equal(t, 1, f.count("shardX"))
	assert.EqualValues(t, 1, c.Fetches())
}

func TestCache_CachedAfterFirstLoad(t *testing.T) {
	calls := 0
	c := New(fetch.Func(func(ctx context.Context, name string) ([]byte, error) {
		calls++
		return []byte(name), nil
	}), upper, nil)

	for i := 0; i < 3; i++ {
		v, err := c.Load(context.Background(), "a")
		require.NoError(t, err)
		assert.Equal(t, "A", v)
	}
	assert.Equal(t, 1, calls)

	v, ok := c.Peek("a")
	assert.True(t, ok)
	assert.Equal(t, "A", v)

	_, ok = c.Peek("b")
	assert.False(t, ok)
}

func TestCache_FailuresAreNotRetried(t *testing.T) {
	calls := 0
	boom := errors.New("connection reset")
	c := New(fetch.Func(func(ctx context.Context, name string) ([]byte, error) {
		calls++
		return nil, boom
	}), upper, nil)

	_, err := c.Load(context.Background(), "broken")
	require.ErrorIs(t, err, ErrShardLoad)
	assert.ErrorIs(t, err, boom)

	_, err = c.Load(context.Background(), "broken")
	require.ErrorIs(t, err, ErrShardLoad)
	assert.Equal(t, 1, calls)
}

func TestCache_ParseFailureIsAShardLoadFailure(t *testing.T) {
	c := New(fetch.Func(func(ctx context.Context, name string) ([]byte, error) {
		return nil, nil
	}), upper, nil)

	_, err := c.Load(context.Background(), "empty")
	assert.ErrorIs(t, err, ErrShardLoad)
}

func TestCache_CancelledWaiterLeavesFetchRunning(t *testing.T) {
	f := newGatedFetcher()
	c := New(f, upper, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Load(ctx, "slow")
		done <- err
	}()

	<-f.started
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(f.release)
	require.Eventually(t, func() bool {
		_, ok := c.Peek("slow")
		return ok
	}, time.Second, 5*time.Millisecond)

	v, err := c.Load(context.Background(), "slow")
	require.NoError(t, err)
	assert.Equal(t, "PAYLOAD:SLOW", v)
	assert.Equal(t, 1, f.count("slow"))
}
