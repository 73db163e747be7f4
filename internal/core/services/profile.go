package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/karl2522/audiora/backend/internal/core/domain"
	"github.com/karl2522/audiora/backend/internal/core/ports"
)

const (
	// historyWindow bounds how many recent events feed a profile.
	historyWindow = 1000
	// minProfileEvents is the cold-start threshold.
	minProfileEvents = 5

	// A genre is skip-heavy with at least this many plays and a skip rate
	// above skipHeavyRate.
	skipHeavyMinPlays = 3
	skipHeavyRate     = 0.5
)

// ProfileBuilder aggregates recent play events into a taste profile.
// Profiles are computed on demand and never persisted.
type ProfileBuilder struct {
	history ports.HistoryStore
	logger  zerolog.Logger
}

// NewProfileBuilder constructs a ProfileBuilder.
func NewProfileBuilder(history ports.HistoryStore, logger zerolog.Logger) *ProfileBuilder {
	return &ProfileBuilder{
		history: history,
		logger:  logger.With().Str("component", "profile").Logger(),
	}
}

// BuildProfile summarizes the user's recent listening. Fewer than
// minProfileEvents events yields the empty cold-start profile, not an error.
func (b *ProfileBuilder) BuildProfile(ctx context.Context, userID string) (domain.TasteProfile, error) {
	events, err := b.history.FindAllForUser(ctx, userID, historyWindow)
	if err != nil {
		return domain.TasteProfile{}, fmt.Errorf("profile: load history: %w", err)
	}

	if len(events) < minProfileEvents {
		b.logger.Debug().Str("user", userID).Int("events", len(events)).Msg("cold start")
		return domain.EmptyProfile(), nil
	}

	profile := domain.TasteProfile{
		TopGenres:          topLabels(rankLabels(events, eventGenre), 5),
		TopArtists:         topLabels(rankLabels(events, eventArtist), 5),
		AvgCompletionRate:  avgCompletionRate(events),
		SkipHeavyGenres:    skipHeavyGenres(events),
		ListeningTimeOfDay: listeningBuckets(events),
		MoodPreference:     moodPreference(events),
		DiscoveryRate:      discoveryRate(events),
	}

	b.logger.Debug().
		Str("user", userID).
		Int("events", len(events)).
		Strs("top_genres", profile.TopGenres).
		Float64("discovery_rate", profile.DiscoveryRate).
		Msg("built taste profile")

	return profile, nil
}

func eventGenre(e domain.PlayEvent) string  { return e.Genre }
func eventArtist(e domain.PlayEvent) string { return e.Artist }

// labelStats accumulates plays and completions for one genre or artist.
type labelStats struct {
	label     string
	plays     int
	completed int
}

// score weights completed plays double on top of raw play count.
func (s labelStats) score() int { return s.completed*2 + s.plays }

// rankLabels aggregates events by label and sorts by score descending.
// Labels are recorded in first-seen order and the sort is stable, so equal
// scores rank in first-seen order rather than map iteration order.
func rankLabels(events []domain.PlayEvent, key func(domain.PlayEvent) string) []labelStats {
	index := make(map[string]int)
	stats := make([]labelStats, 0)

	for _, e := range events {
		label := key(e)
		if label == "" {
			continue
		}
		i, ok := index[label]
		if !ok {
			i = len(stats)
			index[label] = i
			stats = append(stats, labelStats{label: label})
		}
		stats[i].plays++
		if e.Completed {
			stats[i].completed++
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].score() > stats[j].score()
	})

	return stats
}

func topLabels(stats []labelStats, n int) []string {
	if len(stats) > n {
		stats = stats[:n]
	}
	labels := make([]string, len(stats))
	for i, s := range stats {
		labels[i] = s.label
	}
	return labels
}

func avgCompletionRate(events []domain.PlayEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	completed := 0
	for _, e := range events {
		if e.Completed {
			completed++
		}
	}
	return float64(completed) / float64(len(events))
}

func skipHeavyGenres(events []domain.PlayEvent) []string {
	index := make(map[string]int)
	type skipStats struct {
		genre   string
		total   int
		skipped int
	}
	stats := make([]skipStats, 0)

	for _, e := range events {
		if e.Genre == "" {
			continue
		}
		i, ok := index[e.Genre]
		if !ok {
			i = len(stats)
			index[e.Genre] = i
			stats = append(stats, skipStats{genre: e.Genre})
		}
		stats[i].total++
		if e.Skipped {
			stats[i].skipped++
		}
	}

	heavy := make([]string, 0)
	for _, s := range stats {
		if s.total >= skipHeavyMinPlays && float64(s.skipped)/float64(s.total) > skipHeavyRate {
			heavy = append(heavy, s.genre)
		}
	}
	return heavy
}

// listeningBuckets returns the two busiest time-of-day buckets. The stable
// sort over the fixed bucket order makes ties deterministic.
func listeningBuckets(events []domain.PlayEvent) []string {
	order := []string{domain.Morning, domain.Afternoon, domain.Evening, domain.Night}
	counts := make(map[string]int, len(order))
	for _, e := range events {
		counts[domain.TimeOfDay(e.StartedAt.Hour())]++
	}

	buckets := append([]string(nil), order...)
	sort.SliceStable(buckets, func(i, j int) bool {
		return counts[buckets[i]] > counts[buckets[j]]
	})
	return buckets[:2]
}

func moodPreference(events []domain.PlayEvent) []string {
	index := make(map[string]int)
	type moodStats struct {
		mood  string
		count int
	}
	stats := make([]moodStats, 0)

	for _, e := range events {
		if e.Mood == "" {
			continue
		}
		i, ok := index[e.Mood]
		if !ok {
			i = len(stats)
			index[e.Mood] = i
			stats = append(stats, moodStats{mood: e.Mood})
		}
		stats[i].count++
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].count > stats[j].count
	})
	if len(stats) > 3 {
		stats = stats[:3]
	}
	moods := make([]string, len(stats))
	for i, s := range stats {
		moods[i] = s.mood
	}
	return moods
}

// discoveryRate is the share of unique tracks among meaningful plays.
// With no meaningful plays at all, assume full discovery.
func discoveryRate(events []domain.PlayEvent) float64 {
	unique := make(map[string]struct{})
	meaningful := 0
	for _, e := range events {
		if !e.Meaningful() {
			continue
		}
		meaningful++
		unique[e.TrackID] = struct{}{}
	}
	if meaningful == 0 {
		return 1
	}
	return clamp01(float64(len(unique)) / float64(meaningful))
}
