package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/karl2522/audiora/backend/internal/core/domain"
	"github.com/karl2522/audiora/backend/internal/core/ports"
)

// PoolOptions configure candidate pool assembly.
type PoolOptions struct {
	MaxCandidates     int
	IncludeDiscovery  bool
	DiscoveryPct      float64
	ExcludeRecentDays int
	ExcludeGenres     []string
}

// DefaultPoolOptions returns the standard pool configuration.
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxCandidates:     500,
		IncludeDiscovery:  true,
		DiscoveryPct:      0.2,
		ExcludeRecentDays: 7,
	}
}

// PoolAssembler gathers scoring candidates from the catalog, guided by the
// user's taste profile.
type PoolAssembler struct {
	catalog ports.TrackCatalog
	history ports.HistoryStore
	now     func() time.Time
	logger  zerolog.Logger
}

// NewPoolAssembler constructs a PoolAssembler. A nil now falls back to
// time.Now.
func NewPoolAssembler(catalog ports.TrackCatalog, history ports.HistoryStore, now func() time.Time, logger zerolog.Logger) *PoolAssembler {
	if now == nil {
		now = time.Now
	}
	return &PoolAssembler{
		catalog: catalog,
		history: history,
		now:     now,
		logger:  logger.With().Str("component", "pool").Logger(),
	}
}

// Assemble builds the candidate pool: 60% of the budget from the profile's
// top genres, 20% from top artists, and an optional discovery slice. The
// combined pool is deduplicated first-wins in that order, filtered, and
// truncated to MaxCandidates. Output order is deterministic for a given
// catalog response.
func (a *PoolAssembler) Assemble(ctx context.Context, userID string, profile domain.TasteProfile, opts PoolOptions) ([]domain.Track, error) {
	genreBudget := int(float64(opts.MaxCandidates) * 0.6)
	artistBudget := int(float64(opts.MaxCandidates) * 0.2)

	// Genre search narrows to the top 3; discovery stays on the full set.
	searchGenres := profile.TopGenres
	if len(searchGenres) > 3 {
		searchGenres = searchGenres[:3]
	}
	artists := profile.TopArtists
	if len(artists) > 5 {
		artists = artists[:5]
	}

	pool := make([]domain.Track, 0, opts.MaxCandidates)

	if len(searchGenres) > 0 {
		tracks, err := a.catalog.SearchByGenres(ctx, searchGenres, genreBudget)
		if err != nil {
			return nil, fmt.Errorf("pool: genre search: %w", err)
		}
		pool = append(pool, tracks...)
	}

	if len(artists) > 0 {
		tracks, err := a.catalog.SearchByArtists(ctx, artists, artistBudget)
		if err != nil {
			return nil, fmt.Errorf("pool: artist search: %w", err)
		}
		pool = append(pool, tracks...)
	}

	if opts.IncludeDiscovery && opts.DiscoveryPct > 0 {
		budget := int(float64(opts.MaxCandidates) * opts.DiscoveryPct)
		tracks, err := a.catalog.GetDiscoveryTracks(ctx, profile.TopGenres, budget)
		if err != nil {
			return nil, fmt.Errorf("pool: discovery: %w", err)
		}
		pool = append(pool, tracks...)
	}

	pool = dedupeTracks(pool)
	pool = filterGenres(pool, profile.SkipHeavyGenres, opts.ExcludeGenres)

	if opts.ExcludeRecentDays > 0 {
		recent, err := a.recentTrackIDs(ctx, userID, opts.ExcludeRecentDays)
		if err != nil {
			return nil, fmt.Errorf("pool: recent plays: %w", err)
		}
		pool = filterIDs(pool, recent)
	}

	if len(pool) > opts.MaxCandidates {
		pool = pool[:opts.MaxCandidates]
	}

	a.logger.Debug().Str("user", userID).Int("candidates", len(pool)).Msg("assembled candidate pool")
	return pool, nil
}

func (a *PoolAssembler) recentTrackIDs(ctx context.Context, userID string, days int) (map[string]struct{}, error) {
	since := a.now().AddDate(0, 0, -days)
	events, err := a.history.FindByUserID(ctx, userID, ports.HistoryQuery{
		StartDate: since,
		Limit:     historyWindow,
	})
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(events))
	for _, e := range events {
		ids[e.TrackID] = struct{}{}
	}
	return ids, nil
}

// dedupeTracks keeps the first occurrence of each track ID.
func dedupeTracks(tracks []domain.Track) []domain.Track {
	seen := make(map[string]struct{}, len(tracks))
	out := tracks[:0]
	for _, t := range tracks {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}

func filterGenres(tracks []domain.Track, skipHeavy, excluded []string) []domain.Track {
	if len(skipHeavy) == 0 && len(excluded) == 0 {
		return tracks
	}
	blocked := make(map[string]struct{}, len(skipHeavy)+len(excluded))
	for _, g := range skipHeavy {
		blocked[strings.ToLower(g)] = struct{}{}
	}
	for _, g := range excluded {
		blocked[strings.ToLower(domain.NormalizeGenre(g))] = struct{}{}
	}
	out := tracks[:0]
	for _, t := range tracks {
		if _, ok := blocked[strings.ToLower(t.Genre)]; ok {
			continue
		}
		out = append(out, t)
	}
	return out
}

func filterIDs(tracks []domain.Track, exclude map[string]struct{}) []domain.Track {
	if len(exclude) == 0 {
		return tracks
	}
	out := tracks[:0]
	for _, t := range tracks {
		if _, ok := exclude[t.ID]; ok {
			continue
		}
		out = append(out, t)
	}
	return out
}
