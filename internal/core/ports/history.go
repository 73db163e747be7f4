package ports

import (
	"context"
	"time"

	"github.com/karl2522/audiora/backend/internal/core/domain"
)

// HistoryQuery filters listening-history lookups.
type HistoryQuery struct {
	StartDate time.Time // zero value means unbounded
	EndDate   time.Time // zero value means unbounded
	Limit     int
	Offset    int
}

// TrackPlayData is the metadata recorded when playback starts.
type TrackPlayData struct {
	Title    string
	Artist   string
	Genre    string
	Mood     string
	Duration int // seconds
}

// HistoryStore reads and records play events. The engine only reads bounded,
// most-recent-first slices; writes come from the playback surface.
type HistoryStore interface {
	FindAllForUser(ctx context.Context, userID string, limit int) ([]domain.PlayEvent, error)
	FindByUserID(ctx context.Context, userID string, q HistoryQuery) ([]domain.PlayEvent, error)
	CountByUserID(ctx context.Context, userID string, q HistoryQuery) (int, error)

	LogStart(ctx context.Context, userID, trackID string, data TrackPlayData) (domain.PlayEvent, error)
	LogComplete(ctx context.Context, userID, trackID string, durationPlayed int) error
	LogSkip(ctx context.Context, userID, trackID string, durationPlayed int) error
}
