package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/karl2522/audiora/backend/internal/cache"
	"github.com/karl2522/audiora/backend/internal/core/domain"
	"github.com/karl2522/audiora/backend/internal/core/ports"
)

// Library fronts the track catalog with TTL caching for direct lookups:
// search, single track, trending, and stream URL resolution. TTLs differ per
// concern because the underlying data churns at different rates.
type Library struct {
	catalog ports.TrackCatalog
	cache   *cache.Cache
	logger  zerolog.Logger
}

func NewLibrary(catalog ports.TrackCatalog, c *cache.Cache, logger zerolog.Logger) *Library {
	return &Library{
		catalog: catalog,
		cache:   c,
		logger:  logger.With().Str("component", "library").Logger(),
	}
}

// Search runs a free-text catalog search. Results are cached per
// query/limit/offset tuple.
func (l *Library) Search(ctx context.Context, query string, limit, offset int) ([]domain.Track, error) {
	key := cache.SearchKey(query, limit, offset)
	if v, ok := l.cache.Get(key); ok {
		if tracks, ok := v.([]domain.Track); ok {
			return tracks, nil
		}
	}

	tracks, err := l.catalog.SearchTracks(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	l.cache.Set(key, tracks, cache.SearchTTL)
	return tracks, nil
}

// Track fetches a single track by ID.
func (l *Library) Track(ctx context.Context, trackID string) (domain.Track, error) {
	key := cache.TrackKey(trackID)
	if v, ok := l.cache.Get(key); ok {
		if track, ok := v.(domain.Track); ok {
			return track, nil
		}
	}

	track, err := l.catalog.GetTrack(ctx, trackID)
	if err != nil {
		return domain.Track{}, err
	}
	l.cache.Set(key, track, cache.TrackTTL)
	return track, nil
}

// Trending returns trending tracks, optionally scoped to one genre.
func (l *Library) Trending(ctx context.Context, genre string, limit int) ([]domain.Track, error) {
	key := cache.TrendingKey(genre, limit)
	if v, ok := l.cache.Get(key); ok {
		if tracks, ok := v.([]domain.Track); ok {
			return tracks, nil
		}
	}

	tracks, err := l.catalog.GetTrendingTracks(ctx, genre, limit)
	if err != nil {
		return nil, err
	}
	l.cache.Set(key, tracks, cache.TrendingTTL)
	return tracks, nil
}

// StreamURL resolves the playable URL for a track. Stream endpoints are the
// most stable of the lookups, so these entries live the longest.
func (l *Library) StreamURL(ctx context.Context, trackID string) (string, error) {
	key := cache.StreamURLKey(trackID)
	if v, ok := l.cache.Get(key); ok {
		if url, ok := v.(string); ok {
			return url, nil
		}
	}

	url, err := l.catalog.StreamURL(ctx, trackID)
	if err != nil {
		return "", err
	}
	l.cache.Set(key, url, cache.StreamURLTTL)
	return url, nil
}
