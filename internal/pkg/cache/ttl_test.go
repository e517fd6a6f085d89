package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func newCounting(ttl time.Duration) (*TTL[string], *int, *fakeClock) {
	calls := 0
	c := NewTTL(ttl, func(_ context.Context, key string) (string, error) {
		calls++
		return key + "-value", nil
	})
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c.now = clock.Now
	return c, &calls, clock
}

func TestTTL_ReadThrough(t *testing.T) {
	c, calls, _ := newCounting(time.Minute)
	ctx := context.Background()

	v, err := c.Get(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, "org-1-value", v)

	_, _ = c.Get(ctx, "org-1")
	assert.Equal(t, 1, *calls)

	_, _ = c.Get(ctx, "org-2")
	assert.Equal(t, 2, *calls, "keys are isolated")
}

func TestTTL_Expiry(t *testing.T) {
	c, calls, clock := newCounting(time.Minute)
	ctx := context.Background()

	_, _ = c.Get(ctx, "org-1")
	clock.t = clock.t.Add(59 * time.Second)
	_, _ = c.Get(ctx, "org-1")
	assert.Equal(t, 1, *calls)

	clock.t = clock.t.Add(time.Second)
	_, _ = c.Get(ctx, "org-1")
	assert.Equal(t, 2, *calls)
}

func TestTTL_Invalidate(t *testing.T) {
	c, calls, _ := newCounting(time.Hour)
	ctx := context.Background()

	_, _ = c.Get(ctx, "org-1")
	c.Invalidate("org-1")
	_, _ = c.Get(ctx, "org-1")
	assert.Equal(t, 2, *calls)
}

func TestTTL_InvalidateDuringLoadDiscardsResult(t *testing.T) {
	var c *TTL[int]
	version := 1
	calls := 0
	c = NewTTL(time.Minute, func(_ context.Context, key string) (int, error) {
		calls++
		loaded := version
		if calls == 1 {
			// A write lands while the first load is still reading.
			version = 2
			c.Invalidate(key)
		}
		return loaded, nil
	})
	ctx := context.Background()

	v, err := c.Get(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Zero(t, c.Len())

	v, err = c.Get(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, calls)

	_, _ = c.Get(ctx, "org-1")
	assert.Equal(t, 2, calls, "value loaded after invalidation is cached")
}

func TestTTL_ErrorsAreNotCached(t *testing.T) {
	fail := true
	c := NewTTL(time.Hour, func(_ context.Context, key string) (int, error) {
		if fail {
			return 0, errors.New("boom")
		}
		return 42, nil
	})

	_, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len())

	fail = false
	v, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestTTL_ZeroDisablesCaching(t *testing.T) {
	c, calls, _ := newCounting(0)
	_, _ = c.Get(context.Background(), "k")
	_, _ = c.Get(context.Background(), "k")
	assert.Equal(t, 2, *calls)
	assert.Equal(t, 0, c.Len())
}

func TestTTL_Purge(t *testing.T) {
	c, _, clock := newCounting(time.Minute)
	_, _ = c.Get(context.Background(), "a")
	clock.t = clock.t.Add(30 * time.Second)
	_, _ = c.Get(context.Background(), "b")
	clock.t = clock.t.Add(40 * time.Second)

	assert.Equal(t, 1, c.Purge())
	assert.Equal(t, 1, c.Len())
}
