package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/karl2522/audiora/backend/internal/cache"
	"github.com/karl2522/audiora/backend/internal/core/domain"
	"github.com/karl2522/audiora/backend/internal/core/ports"
	"github.com/karl2522/audiora/backend/internal/worker"
)

// fallbackVibe labels playlists served to cold-start users.
const fallbackVibe = "Trending tracks to get you started"

// defaultVibe labels personalized playlists when no advisor vibe is available.
const defaultVibe = "Personalized mix based on your taste"

// DJConfig wires the playlist engine's dependencies. History and Catalog are
// required; everything else is optional.
type DJConfig struct {
	History ports.HistoryStore
	Catalog ports.TrackCatalog
	Advisor ports.SessionAdvisor
	Cache   *cache.Cache
	Pool    *worker.Pool
	Rand    *rand.Rand
	Now     func() time.Time
	Logger  zerolog.Logger
}

// DJ orchestrates the full playlist pipeline: profile, candidate pool,
// scoring, assembly, with a trending fallback for cold-start users.
type DJ struct {
	profiles  *ProfileBuilder
	pool      *PoolAssembler
	scorer    *Scorer
	assembler *Assembler
	catalog ports.TrackCatalog
	advisor ports.SessionAdvisor
	cache   *cache.Cache
	now     func() time.Time
	newID   func() string
	logger  zerolog.Logger
}

// NewDJ constructs the playlist engine.
func NewDJ(cfg DJConfig) *DJ {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger.With().Str("component", "dj").Logger()
	return &DJ{
		profiles:  NewProfileBuilder(cfg.History, cfg.Logger),
		pool:      NewPoolAssembler(cfg.Catalog, cfg.History, now, cfg.Logger),
		scorer:    NewScorer(cfg.Pool),
		assembler: NewAssembler(cfg.Rand),
		catalog:   cfg.Catalog,
		advisor:   cfg.Advisor,
		cache:     cfg.Cache,
		now:       now,
		newID:     uuid.NewString,
		logger:    logger,
	}
}

// GeneratePlaylist produces a playlist of up to sessionLength tracks for the
// user, capped at maxSessionLength. Non-positive arguments fall back to the
// defaults. Cached results are returned as-is; cold-start users and empty
// candidate pools fall back to trending tracks.
func (d *DJ) GeneratePlaylist(ctx context.Context, userID string, sessionLength, maxSessionLength int) (domain.GeneratedPlaylist, error) {
	if sessionLength <= 0 {
		sessionLength = DefaultSessionLength
	}
	if maxSessionLength <= 0 {
		maxSessionLength = DefaultMaxSessionLength
	}
	length := ClampSessionLength(sessionLength, maxSessionLength)

	key := cache.PlaylistKey(userID, length)
	if d.cache != nil {
		if v, ok := d.cache.Get(key); ok {
			if playlist, ok := v.(domain.GeneratedPlaylist); ok {
				d.logger.Debug().Str("user", userID).Msg("playlist cache hit")
				return playlist, nil
			}
		}
	}

	profile, err := d.profiles.BuildProfile(ctx, userID)
	if err != nil {
		return domain.GeneratedPlaylist{}, fmt.Errorf("dj: %w", err)
	}

	if profile.ColdStart() {
		d.logger.Info().Str("user", userID).Msg("cold start, serving trending fallback")
		return d.fallbackPlaylist(ctx, userID, length)
	}

	params := d.sessionParameters(ctx, profile)

	opts := DefaultPoolOptions()
	if params != nil {
		opts.ExcludeGenres = params.Filters.ExcludeGenres
	}

	candidates, err := d.pool.Assemble(ctx, userID, profile, opts)
	if err != nil {
		return domain.GeneratedPlaylist{}, fmt.Errorf("dj: %w", err)
	}
	if len(candidates) == 0 {
		d.logger.Warn().Str("user", userID).Msg("empty candidate pool, serving trending fallback")
		return d.fallbackPlaylist(ctx, userID, length)
	}

	weights := domain.DefaultSessionWeights()
	if params != nil && params.Weights != nil {
		weights = *params.Weights
	}

	scored := d.scorer.Score(candidates, profile, weights, d.now())
	tracks := d.assembler.Assemble(scored, length)

	vibe := defaultVibe
	if params != nil && params.VibeDescription != "" {
		vibe = params.VibeDescription
	}

	playlist := domain.GeneratedPlaylist{
		ID:              d.newID(),
		UserID:          userID,
		GeneratedAt:     d.now(),
		Tracks:          tracks,
		SessionLength:   len(tracks),
		VibeDescription: vibe,
		Metadata: domain.PlaylistMetadata{
			AvgCompletionRate: profile.AvgCompletionRate,
			TopGenres:         firstN(profile.TopGenres, 3),
			TopArtists:        firstN(profile.TopArtists, 3),
		},
	}

	if d.cache != nil {
		d.cache.Set(key, playlist, cache.PlaylistTTL)
	}

	d.logger.Info().
		Str("user", userID).
		Str("playlist", playlist.ID).
		Int("tracks", len(tracks)).
		Msg("generated playlist")

	return playlist, nil
}

// sessionParameters consults the advisor when one is configured. Any failure
// degrades to nil so generation proceeds with defaults.
func (d *DJ) sessionParameters(ctx context.Context, profile domain.TasteProfile) *domain.SessionParameters {
	if d.advisor == nil {
		return nil
	}
	now := d.now()
	sessionContext := fmt.Sprintf("Time: %s, Day: %s", now.Format("15:04"), now.Weekday())
	params, err := d.advisor.GetSessionParameters(ctx, profile, sessionContext)
	if err != nil {
		d.logger.Warn().Err(err).Msg("advisor unavailable, using default session parameters")
		return nil
	}
	return params
}

// fallbackPlaylist serves trending tracks with zeroed taste metadata.
// Fallbacks are never cached so a user graduates to a personalized playlist
// as soon as they have enough history.
func (d *DJ) fallbackPlaylist(ctx context.Context, userID string, length int) (domain.GeneratedPlaylist, error) {
	tracks, err := d.catalog.GetTrendingTracks(ctx, "", length)
	if err != nil {
		return domain.GeneratedPlaylist{}, fmt.Errorf("dj: trending fallback: %w", err)
	}
	if len(tracks) > length {
		tracks = tracks[:length]
	}
	return domain.GeneratedPlaylist{
		ID:              d.newID(),
		UserID:          userID,
		GeneratedAt:     d.now(),
		Tracks:          tracks,
		SessionLength:   len(tracks),
		VibeDescription: fallbackVibe,
		Metadata:        domain.PlaylistMetadata{},
	}, nil
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		s = s[:n]
	}
	return append([]string(nil), s...)
}
