package domain

import "strings"

// Free-text genre and mood labels vary wildly between catalog uploads
// ("hip hop", "hiphop", "Hip-Hop"). Both are collapsed to a fixed canonical
// vocabulary at ingestion so profile aggregation and scoring compare like
// with like. Unmapped values fall back to capitalize-first.

var genreAliases = map[string]string{
	"hip hop":                 "Hip-Hop",
	"hip-hop":                 "Hip-Hop",
	"hiphop":                  "Hip-Hop",
	"r&b":                     "R&B",
	"rnb":                     "R&B",
	"electronic":              "Electronic",
	"edm":                     "Electronic",
	"electronic dance music":  "Electronic",
	"lo-fi":                   "Lo-Fi",
	"lofi":                    "Lo-Fi",
	"lo fi":                   "Lo-Fi",
	"indie":                   "Indie",
	"indie rock":              "Indie",
	"rock":                    "Rock",
	"pop":                     "Pop",
	"jazz":                    "Jazz",
	"classical":               "Classical",
	"country":                 "Country",
	"folk":                    "Folk",
	"reggae":                  "Reggae",
	"blues":                   "Blues",
	"metal":                   "Metal",
	"punk":                    "Punk",
	"alternative":             "Alternative",
}

var moodAliases = map[string]string{
	"chill":       "Chill",
	"chill vibes": "Chill",
	"chillout":    "Chill",
	"relaxed":     "Chill",
	"sad":         "Sad",
	"melancholic": "Sad",
	"melancholy":  "Sad",
	"happy":       "Happy",
	"upbeat":      "Happy",
	"energetic":   "Energetic",
	"energizing":  "Energetic",
	"calm":        "Calm",
	"peaceful":    "Calm",
	"romantic":    "Romantic",
	"love":        "Romantic",
	"aggressive":  "Aggressive",
	"intense":     "Aggressive",
	"dreamy":      "Dreamy",
	"atmospheric": "Dreamy",
}

// NormalizeGenre maps a free-text genre label to its canonical form.
func NormalizeGenre(genre string) string {
	if strings.TrimSpace(genre) == "" {
		return ""
	}
	if canonical, ok := genreAliases[strings.ToLower(strings.TrimSpace(genre))]; ok {
		return canonical
	}
	return capitalizeFirst(genre)
}

// NormalizeMood maps a free-text mood label to its canonical form.
func NormalizeMood(mood string) string {
	if strings.TrimSpace(mood) == "" {
		return ""
	}
	if canonical, ok := moodAliases[strings.ToLower(strings.TrimSpace(mood))]; ok {
		return canonical
	}
	return capitalizeFirst(mood)
}

func capitalizeFirst(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
