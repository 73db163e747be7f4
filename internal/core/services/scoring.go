package services

import (
	"sync"
	"time"

	"github.com/karl2522/audiora/backend/internal/core/domain"
	"github.com/karl2522/audiora/backend/internal/worker"
)

// scoreChunkSize is the batch size for parallel scoring. Chunked and
// sequential scoring produce identical results.
const scoreChunkSize = 100

// Scorer ranks candidate tracks against a taste profile. Scoring itself is
// pure; the optional worker pool only parallelizes it.
type Scorer struct {
	pool *worker.Pool
}

// NewScorer constructs a Scorer. A nil pool means sequential scoring.
func NewScorer(pool *worker.Pool) *Scorer {
	return &Scorer{pool: pool}
}

// Score produces one TrackScore per candidate, in candidate order, with
// PoolIndex recording the candidate's position.
func (s *Scorer) Score(candidates []domain.Track, profile domain.TasteProfile, weights domain.SessionWeights, now time.Time) []domain.TrackScore {
	if s.pool == nil || len(candidates) <= scoreChunkSize {
		return ScoreTracks(candidates, profile, weights, now)
	}

	results := make([]domain.TrackScore, len(candidates))
	var wg sync.WaitGroup
	for start := 0; start < len(candidates); start += scoreChunkSize {
		end := start + scoreChunkSize
		if end > len(candidates) {
			end = len(candidates)
		}
		start, end := start, end
		wg.Add(1)
		s.pool.Run(func() {
			defer wg.Done()
			for i := start; i < end; i++ {
				results[i] = scoreTrack(candidates[i], i, profile, weights, now)
			}
		})
	}
	wg.Wait()
	return results
}

// ScoreTracks scores every candidate sequentially. It is deterministic: the
// same inputs always produce the same output.
func ScoreTracks(candidates []domain.Track, profile domain.TasteProfile, weights domain.SessionWeights, now time.Time) []domain.TrackScore {
	scores := make([]domain.TrackScore, len(candidates))
	for i, t := range candidates {
		scores[i] = scoreTrack(t, i, profile, weights, now)
	}
	return scores
}

func scoreTrack(t domain.Track, poolIndex int, profile domain.TasteProfile, weights domain.SessionWeights, now time.Time) domain.TrackScore {
	b := domain.ScoreBreakdown{
		GenreMatch:    genreMatch(t, profile),
		ArtistMatch:   artistMatch(t, profile),
		MoodMatch:     moodMatch(t, profile),
		Novelty:       noveltyScore(profile),
		TimeRelevance: timeRelevance(profile, now),
	}

	weighted := b.GenreMatch*weights.GenreMatch +
		b.ArtistMatch*weights.ArtistMatch +
		b.MoodMatch*weights.MoodMatch +
		b.Novelty*weights.Novelty

	completionBoost := 0.8 + profile.AvgCompletionRate*0.4

	return domain.TrackScore{
		Track:     t,
		PoolIndex: poolIndex,
		Score:     clamp01(weighted * completionBoost * b.TimeRelevance),
		Breakdown: b,
	}
}

// genreMatch rewards the profile's top genres by rank: 1.0 for the first,
// 0.8 for the second, 0.6 for any other listed genre.
func genreMatch(t domain.Track, profile domain.TasteProfile) float64 {
	switch profile.GenreRank(t.Genre) {
	case 0:
		return 1.0
	case 1:
		return 0.8
	case -1:
		return 0
	default:
		return 0.6
	}
}

// artistMatch gives full credit for a top-ranked artist and partial credit
// for any other known artist.
func artistMatch(t domain.Track, profile domain.TasteProfile) float64 {
	switch profile.ArtistRank(t.Artist) {
	case 0:
		return 1.0
	case -1:
		return 0
	default:
		return 0.7
	}
}

func moodMatch(t domain.Track, profile domain.TasteProfile) float64 {
	if t.Mood == "" {
		return 0
	}
	if profile.PrefersMood(t.Mood) {
		return 1.0
	}
	return 0
}

// noveltyScore scales a base of 1.0 by the profile's appetite for discovery.
// Listeners below 0.5 discovery take a further reduction on top of the
// scaling; product is aware the two compound.
func noveltyScore(profile domain.TasteProfile) float64 {
	n := 1.0 * (0.5 + profile.DiscoveryRate*0.5)
	if profile.DiscoveryRate < 0.5 {
		n *= 0.7
	}
	return clamp01(n)
}

// timeRelevance boosts scores during the user's usual listening hours and
// dampens them otherwise.
func timeRelevance(profile domain.TasteProfile, now time.Time) float64 {
	if profile.ListensAt(domain.TimeOfDay(now.Hour())) {
		return 1.1
	}
	return 0.9
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
