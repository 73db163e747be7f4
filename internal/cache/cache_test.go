package cache

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCache() (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewWithClock(zerolog.Nop(), clock.Now), clock
}

func TestCache_GetSet(t *testing.T) {
	c, _ := newTestCache()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", "v", time.Minute)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestCache_ExpiryOnRead(t *testing.T) {
	c, clock := newTestCache()

	c.Set("k", 42, 15*time.Minute)

	clock.Advance(14 * time.Minute)
	_, ok := c.Get("k")
	assert.True(t, ok, "entry should still be valid before TTL")

	clock.Advance(time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry at exactly TTL must be expired")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Evictions)
	assert.Equal(t, 0, stats.Size)
}

func TestCache_IndependentTTLs(t *testing.T) {
	c, clock := newTestCache()

	c.Set(SearchKey("lofi beats", 20, 0), "search", SearchTTL)
	c.Set(TrackKey("t1"), "track", TrackTTL)
	c.Set(StreamURLKey("t1"), "stream", StreamURLTTL)

	clock.Advance(6 * time.Minute)

	_, ok := c.Get(SearchKey("lofi beats", 20, 0))
	assert.False(t, ok, "search entry expires after 5m")
	_, ok = c.Get(TrackKey("t1"))
	assert.True(t, ok, "track entry lives 10m")
	_, ok = c.Get(StreamURLKey("t1"))
	assert.True(t, ok, "stream url entry lives 30m")
}

func TestCache_LastWriterWins(t *testing.T) {
	c, _ := newTestCache()

	c.Set("k", "first", time.Minute)
	c.Set("k", "second", time.Minute)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestCache_Sweep(t *testing.T) {
	c, clock := newTestCache()

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Hour)
	clock.Advance(5 * time.Minute)

	evicted := c.Sweep()
	assert.Equal(t, 1, evicted)

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
}

func TestCache_KeyBuilders(t *testing.T) {
	assert.Equal(t, "audiora-dj:u1:15", PlaylistKey("u1", 15))
	assert.Equal(t, "search:lofi:20:0", SearchKey("  LoFi ", 20, 0))
	assert.Equal(t, "trending:all:20", TrendingKey("", 20))
	assert.Equal(t, "trending:Lo-Fi:10", TrendingKey("Lo-Fi", 10))
	assert.Equal(t, "track:t9", TrackKey("t9"))
	assert.Equal(t, "stream:t9", StreamURLKey("t9"))
}
