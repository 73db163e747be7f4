package domain

import "time"

// Track is a normalized catalog record. Within a generation cycle the
// candidate pool holds immutable Tracks sourced from the external catalog.
type Track struct {
	ID            string
	Title         string
	Artist        string
	ArtistID      string
	ArtistHandle  string
	Artwork       string
	StreamURL     string
	Duration      int    // seconds
	Genre         string // optional
	Mood          string // optional
	Tags          []string
	PlayCount     int
	FavoriteCount int
	RepostCount   int
	Permalink     string
}

// ScoreBreakdown records the per-factor components behind a final score.
type ScoreBreakdown struct {
	GenreMatch    float64
	ArtistMatch   float64
	MoodMatch     float64
	Novelty       float64
	TimeRelevance float64
}

// TrackScore pairs a candidate with its relevance score. PoolIndex is the
// candidate's position in the deduplicated pool and is the tie-break key for
// equal scores, so ranking stays deterministic.
type TrackScore struct {
	Track     Track
	PoolIndex int
	Score     float64
	Breakdown ScoreBreakdown
}

// SessionWeights are the scoring factor weights for one generation. They are
// each in [0,1] but need not sum to 1.
type SessionWeights struct {
	GenreMatch  float64 `json:"genre_match" validate:"min=0,max=1"`
	ArtistMatch float64 `json:"artist_match" validate:"min=0,max=1"`
	MoodMatch   float64 `json:"mood_match" validate:"min=0,max=1"`
	Novelty     float64 `json:"novelty" validate:"min=0,max=1"`
}

// DefaultSessionWeights returns the weights used when no advisor override is
// present or the override failed validation.
func DefaultSessionWeights() SessionWeights {
	return SessionWeights{
		GenreMatch:  0.4,
		ArtistMatch: 0.3,
		MoodMatch:   0.2,
		Novelty:     0.1,
	}
}

// SessionParameters is the advisor's validated output. A nil value means the
// advisor was unavailable or produced output that failed validation; callers
// fall back to defaults in that case, never to a partially applied result.
// Weights is nil when the model omitted the object, so a missing override
// reads as absent instead of all zeros.
type SessionParameters struct {
	VibeDescription string          `json:"vibe_description" validate:"required"`
	TargetMoods     []string        `json:"target_moods"`
	PrimaryGenres   []string        `json:"primary_genres"`
	GenreStrictness float64         `json:"genre_strictness" validate:"min=0,max=1"`
	Weights         *SessionWeights `json:"weights"`
	Filters         SessionFilters  `json:"filters"`
}

// SessionFilters carries advisor-supplied candidate filters.
type SessionFilters struct {
	ExcludeGenres []string `json:"exclude_genres"`
}

// PlaylistMetadata summarizes the profile a playlist was generated from.
type PlaylistMetadata struct {
	AvgCompletionRate float64  `json:"avgCompletionRate"`
	TopGenres         []string `json:"topGenres"`
	TopArtists        []string `json:"topArtists"`
}

// GeneratedPlaylist is the pipeline's output. It lives in the result cache
// keyed by (userID, sessionLength) until its TTL expires.
type GeneratedPlaylist struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId"`
	GeneratedAt     time.Time        `json:"generatedAt"`
	Tracks          []Track          `json:"tracks"`
	SessionLength   int              `json:"sessionLength"`
	VibeDescription string           `json:"vibeDescription"`
	Metadata        PlaylistMetadata `json:"metadata"`
}
