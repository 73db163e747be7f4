package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/karl2522/audiora/backend/internal/core/domain"
)

// ErrProviderUnavailable indicates every catalog mirror was exhausted.
// Callers should surface it as a retryable service error.
var ErrProviderUnavailable = errors.New("track catalog unavailable")

// ProviderUnavailableError provides context for an exhausted catalog request.
type ProviderUnavailableError struct {
	Endpoint string
	Err      error
}

func (e *ProviderUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("track catalog unavailable for %s", e.Endpoint)
	}
	return fmt.Sprintf("track catalog unavailable for %s: %v", e.Endpoint, e.Err)
}

func (e *ProviderUnavailableError) Is(target error) bool {
	return target == ErrProviderUnavailable
}

func (e *ProviderUnavailableError) Unwrap() error {
	return e.Err
}

// TrackCatalog is the external track source the candidate pool is built
// from. Implementations return normalized tracks and must treat empty or
// partial results as valid; retries and mirror failover live behind this
// interface, not in the core.
type TrackCatalog interface {
	SearchByGenres(ctx context.Context, genres []string, limit int) ([]domain.Track, error)
	SearchByArtists(ctx context.Context, artists []string, limit int) ([]domain.Track, error)
	GetDiscoveryTracks(ctx context.Context, genres []string, limit int) ([]domain.Track, error)
	GetTrendingTracks(ctx context.Context, genre string, limit int) ([]domain.Track, error)

	SearchTracks(ctx context.Context, query string, limit, offset int) ([]domain.Track, error)
	GetTrack(ctx context.Context, trackID string) (domain.Track, error)
	StreamURL(ctx context.Context, trackID string) (string, error)
}
