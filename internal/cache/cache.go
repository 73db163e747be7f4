// Package cache provides time-bounded memoization for pipeline results and
// catalog lookups. Entries expire lazily on read and are swept eagerly by a
// periodic background loop; writes are last-writer-wins with no coalescing.
package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Default TTLs per lookup concern.
const (
	SearchTTL    = 5 * time.Minute
	TrackTTL     = 10 * time.Minute
	TrendingTTL  = 15 * time.Minute
	StreamURLTTL = 30 * time.Minute
	PlaylistTTL  = 15 * time.Minute

	// DefaultSweepInterval is how often the background sweep scans for
	// expired entries.
	DefaultSweepInterval = 5 * time.Minute
)

type entry struct {
	data       any
	insertedAt time.Time
	ttl        time.Duration
}

// Stats tracks cache behavior for logging and tests.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// Cache is a thread-safe in-memory TTL cache. The clock is injectable so
// expiry is testable without real time passing.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
	logger  zerolog.Logger

	hits      int64
	misses    int64
	evictions int64

	stop chan struct{}
	once sync.Once
}

// New creates a cache using the wall clock.
func New(logger zerolog.Logger) *Cache {
	return NewWithClock(logger, time.Now)
}

// NewWithClock creates a cache with an explicit clock.
func NewWithClock(logger zerolog.Logger, now func() time.Time) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     now,
		logger:  logger.With().Str("component", "cache").Logger(),
		stop:    make(chan struct{}),
	}
}

// Get returns the cached value for key, or false on a miss. An expired entry
// counts as a miss and is evicted in place.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if c.now().Sub(e.insertedAt) >= e.ttl {
		delete(c.entries, key)
		c.misses++
		c.evictions++
		c.logger.Debug().Str("key", key).Msg("cache expired")
		return nil, false
	}
	c.hits++
	return e.data, true
}

// Set stores value under key for ttl. An existing entry is overwritten.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{data: value, insertedAt: c.now(), ttl: ttl}
	c.mu.Unlock()
	c.logger.Debug().Str("key", key).Dur("ttl", ttl).Msg("cache set")
}

// Delete removes key if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Sweep removes every expired entry and returns how many were evicted.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	evicted := 0
	for key, e := range c.entries {
		if now.Sub(e.insertedAt) >= e.ttl {
			delete(c.entries, key)
			evicted++
		}
	}
	c.evictions += int64(evicted)
	if evicted > 0 {
		c.logger.Debug().Int("evicted", evicted).Msg("cache sweep")
	}
	return evicted
}

// StartSweeper runs Sweep every interval until Stop is called. The loop
// holds no lock while sleeping, so request paths are never blocked by it.
func (c *Cache) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Sweep()
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweeper loop. Safe to call multiple times.
func (c *Cache) Stop() {
	c.once.Do(func() { close(c.stop) })
}

// Stats returns a snapshot of cache counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.entries),
	}
}

// Key builders for the lookup concerns that share this cache.

func PlaylistKey(userID string, sessionLength int) string {
	return fmt.Sprintf("audiora-dj:%s:%d", userID, sessionLength)
}

func SearchKey(query string, limit, offset int) string {
	return fmt.Sprintf("search:%s:%d:%d", strings.ToLower(strings.TrimSpace(query)), limit, offset)
}

func TrackKey(trackID string) string {
	return "track:" + trackID
}

func TrendingKey(genre string, limit int) string {
	if genre == "" {
		genre = "all"
	}
	return fmt.Sprintf("trending:%s:%d", genre, limit)
}

func StreamURLKey(trackID string) string {
	return "stream:" + trackID
}
