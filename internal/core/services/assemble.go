package services

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/karl2522/audiora/backend/internal/core/domain"
)

const (
	// DefaultSessionLength is used when a request does not name one.
	DefaultSessionLength = 15
	// DefaultMaxSessionLength caps how many tracks a session may hold.
	DefaultMaxSessionLength = 50

	// shuffleWindow is how many of the top-ranked tracks get reordered so
	// back-to-back sessions do not always open identically.
	shuffleWindow = 10
)

// Assembler turns scored candidates into an ordered playlist.
type Assembler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewAssembler constructs an Assembler. A nil rng gets a time-seeded source;
// tests pass a fixed seed for reproducible shuffles.
func NewAssembler(rng *rand.Rand) *Assembler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Assembler{rng: rng}
}

// ClampSessionLength bounds a requested length to [1, maxLength].
func ClampSessionLength(requested, maxLength int) int {
	if maxLength <= 0 {
		maxLength = DefaultMaxSessionLength
	}
	if requested < 1 {
		return 1
	}
	if requested > maxLength {
		return maxLength
	}
	return requested
}

// Assemble sorts candidates by score descending, breaking ties by pool index
// so equal scores keep candidate order, takes the top sessionLength tracks and
// shuffles the leading window.
func (a *Assembler) Assemble(scored []domain.TrackScore, sessionLength int) []domain.Track {
	ranked := append([]domain.TrackScore(nil), scored...)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].PoolIndex < ranked[j].PoolIndex
	})

	if len(ranked) > sessionLength {
		ranked = ranked[:sessionLength]
	}

	tracks := make([]domain.Track, len(ranked))
	for i, s := range ranked {
		tracks[i] = s.Track
	}

	a.shuffleHead(tracks)
	return tracks
}

// shuffleHead applies a Fisher-Yates shuffle to the first shuffleWindow
// positions. The membership of the window and everything after it is
// unchanged; only order within the window varies.
func (a *Assembler) shuffleHead(tracks []domain.Track) {
	n := len(tracks)
	if n > shuffleWindow {
		n = shuffleWindow
	}
	if n < 2 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := n - 1; i > 0; i-- {
		j := a.rng.Intn(i + 1)
		tracks[i], tracks[j] = tracks[j], tracks[i]
	}
}
