package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type summary struct {
	Total int     `json:"total"`
	Avg   float64 `json:"avg"`
}

func TestLRUExpiry(t *testing.T) {
	c, err := NewLRU(4, 30*time.Millisecond)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", summary{Total: 2, Avg: 81.1}, time.Hour))

	var got summary
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, summary{Total: 2, Avg: 81.1}, got)

	assert.Eventually(t, func() bool {
		return errors.Is(c.Get(ctx, "k", &got), ErrMiss)
	}, time.Second, 10*time.Millisecond)
}

func TestLRUEvictsOldest(t *testing.T) {
	c, err := NewLRU(2, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()
	for i, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, i, 0))
	}
	var v int
	assert.ErrorIs(t, c.Get(ctx, "a", &v), ErrMiss)
	require.NoError(t, c.Get(ctx, "c", &v))
	assert.Equal(t, 2, v)

	_, err = NewLRU(0, time.Minute)
	assert.Error(t, err)
}

func TestLRUDelete(t *testing.T) {
	c, err := NewLRU(4, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "a", 1, 0))
	require.NoError(t, c.Delete(ctx, "a", "missing"))

	var v int
	assert.ErrorIs(t, c.Get(ctx, "a", &v), ErrMiss)
}

func TestFindAndCacheLoadsOnce(t *testing.T) {
	c, err := NewLRU(4, time.Minute)
	require.NoError(t, err)
	loader := NewLoader(c, time.Minute, nil)

	var calls int32
	fetch := func(context.Context) (summary, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(10 * time.Millisecond)
		return summary{Total: 3}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := FindAndCache(context.Background(), loader, "cycle:1", fetch)
			assert.NoError(t, err)
			assert.Equal(t, 3, got.Total)
		}()
	}
	wg.Wait()
	afterBurst := atomic.LoadInt32(&calls)
	assert.LessOrEqual(t, afterBurst, int32(2))

	got, err := FindAndCache(context.Background(), loader, "cycle:1", fetch)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, afterBurst, atomic.LoadInt32(&calls))

	loader.Invalidate(context.Background(), "cycle:1")
	_, err = FindAndCache(context.Background(), loader, "cycle:1", fetch)
	require.NoError(t, err)
	assert.Equal(t, afterBurst+1, atomic.LoadInt32(&calls))
}

func TestFindAndCachePropagatesError(t *testing.T) {
	c, err := NewLRU(4, time.Minute)
	require.NoError(t, err)
	loader := NewLoader(c, time.Minute, nil)
	boom := errors.New("boom")

	_, err = FindAndCache(context.Background(), loader, "k", func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}

func TestFindAndCacheWithoutLoader(t *testing.T) {
	got, err := FindAndCache(context.Background(), nil, "k", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}
