package domain

import "strings"

// Time-of-day buckets for listening patterns.
const (
	Morning   = "Morning"   // [6, 12)
	Afternoon = "Afternoon" // [12, 18)
	Evening   = "Evening"   // [18, 22)
	Night     = "Night"     // [22, 6)
)

// TimeOfDay maps an hour (0-23) to its listening bucket.
func TimeOfDay(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return Morning
	case hour >= 12 && hour < 18:
		return Afternoon
	case hour >= 18 && hour < 22:
		return Evening
	default:
		return Night
	}
}

// TasteProfile is a bounded summary of a user's listening behavior. It is
// recomputed on demand from recent play events and never persisted.
type TasteProfile struct {
	TopGenres          []string // rank-ordered, at most 5
	TopArtists         []string // rank-ordered, at most 5
	AvgCompletionRate  float64  // [0,1]
	SkipHeavyGenres    []string
	ListeningTimeOfDay []string // top 2 buckets
	MoodPreference     []string // top 3 normalized moods
	DiscoveryRate      float64  // [0,1]
}

// EmptyProfile is the cold-start profile: no preferences, full discovery.
func EmptyProfile() TasteProfile {
	return TasteProfile{
		TopGenres:          []string{},
		TopArtists:         []string{},
		SkipHeavyGenres:    []string{},
		ListeningTimeOfDay: []string{},
		MoodPreference:     []string{},
		DiscoveryRate:      1,
	}
}

// ColdStart reports whether the profile carries too little signal to drive
// the pipeline. It triggers the trending fallback, not an error.
func (p TasteProfile) ColdStart() bool {
	return len(p.TopGenres) == 0
}

// GenreRank returns the 0-based rank of genre in TopGenres, or -1.
func (p TasteProfile) GenreRank(genre string) int {
	return indexFold(p.TopGenres, genre)
}

// ArtistRank returns the 0-based rank of artist in TopArtists, or -1.
func (p TasteProfile) ArtistRank(artist string) int {
	return indexFold(p.TopArtists, artist)
}

// PrefersMood reports whether mood is one of the preferred moods.
func (p TasteProfile) PrefersMood(mood string) bool {
	return mood != "" && indexFold(p.MoodPreference, mood) >= 0
}

// ListensAt reports whether bucket is one of the top listening buckets.
func (p TasteProfile) ListensAt(bucket string) bool {
	return indexFold(p.ListeningTimeOfDay, bucket) >= 0
}

func indexFold(values []string, target string) int {
	if target == "" {
		return -1
	}
	for i, v := range values {
		if strings.EqualFold(v, target) {
			return i
		}
	}
	return -1
}
