package gemini

import (
	"fmt"
	"strings"

	"github.com/karl2522/audiora/backend/internal/core/domain"
)

const maxInputLen = 100

// sanitizeInput flattens whitespace and strips everything outside a small
// safe character set so profile strings cannot steer the prompt.
func sanitizeInput(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		switch {
		case r == '\r' || r == '\n' || r == '\t':
			b.WriteRune(' ')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == ',' || r == '_':
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if len(out) > maxInputLen {
		out = out[:maxInputLen]
	}
	return out
}

func sanitizeList(values []string) string {
	safe := make([]string, 0, len(values))
	for _, v := range values {
		if s := sanitizeInput(v); s != "" {
			safe = append(safe, s)
		}
	}
	return strings.Join(safe, ", ")
}

func buildPrompt(profile domain.TasteProfile, sessionContext string) string {
	return fmt.Sprintf(`You are the "Brain" of the Audiora DJ. Your goal is to configure the music recommendation engine for a specific user session.

CONTEXT: %s

USER PROFILE:
- Top Genres: %s
- Top Artists: %s
- Preferred Moods: %s
- Discovery Rate: %.2f

TASK:
Analyze this user and the current context. Define the optimal session parameters.

OUTPUT JSON FORMAT:
{
  "vibe_description": "A short, engaging description of the vibe (e.g., 'A focused flow for your morning')",
  "target_moods": ["Mood1", "Mood2"],
  "primary_genres": ["Genre1", "Genre2"],
  "genre_strictness": 0.0 to 1.0 (Higher = stricter adherence to primary_genres, Lower = more variety/user history),
  "weights": {
    "genre_match": 0.1 to 0.9 (Standard: 0.4),
    "artist_match": 0.1 to 0.9 (Standard: 0.3),
    "mood_match": 0.1 to 0.9 (Standard: 0.2),
    "novelty": 0.1 to 0.9 (Standard: 0.1)
  },
  "filters": {
    "exclude_genres": ["GenreToExclude"]
  }
}

GUARDRAILS:
- DO NOT select specific tracks.
- DO NOT invent data.
- Output ONLY valid JSON.`,
		sanitizeInput(sessionContext),
		sanitizeList(profile.TopGenres),
		sanitizeList(profile.TopArtists),
		sanitizeList(profile.MoodPreference),
		profile.DiscoveryRate,
	)
}
