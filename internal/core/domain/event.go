package domain

import "time"

// PlayEvent is a single listening-history row. Events are created when
// playback starts and mutated once when it completes or is skipped; the
// engine only ever reads them.
type PlayEvent struct {
	ID             int64
	UserID         string
	TrackID        string
	Title          string
	Artist         string
	Genre          string // optional, normalized at ingestion
	Mood           string // optional, normalized at ingestion
	TrackDuration  int    // seconds
	StartedAt      time.Time
	DurationPlayed int // seconds
	Completed      bool
	Skipped        bool
	CompletedAt    *time.Time
	SkippedAt      *time.Time
}

// Meaningful reports whether this play counts toward the discovery rate:
// at least 30 seconds heard, or a natural completion. Shorter incomplete
// plays are treated as accidental taps.
func (e PlayEvent) Meaningful() bool {
	return e.DurationPlayed >= 30 || e.Completed
}
