package audius

import (
	"fmt"
	"strings"

	"github.com/karl2522/audiora/backend/internal/core/domain"
)

// mapTrack normalizes an Audius wire track into the domain representation.
// baseURL is the mirror used for the stream URL fallback.
func mapTrack(t wireTrack, baseURL string) domain.Track {
	artist := t.User.Name
	if artist == "" {
		artist = t.User.Handle
	}

	streamURL := t.StreamURL
	if streamURL == "" {
		streamURL = fmt.Sprintf("%s/v1/tracks/%s/stream", baseURL, t.ID)
	}

	return domain.Track{
		ID:            t.ID,
		Title:         t.Title,
		Artist:        artist,
		ArtistID:      t.User.ID,
		ArtistHandle:  t.User.Handle,
		Artwork:       bestArtwork(t),
		StreamURL:     streamURL,
		Duration:      t.Duration,
		Genre:         t.Genre,
		Mood:          t.Mood,
		Tags:          splitTags(t.Tags),
		PlayCount:     t.PlayCount,
		FavoriteCount: t.FavoriteCount,
		RepostCount:   t.RepostCount,
		Permalink:     t.Permalink,
	}
}

// bestArtwork prefers the largest track artwork, falling back to the artist's
// profile picture.
func bestArtwork(t wireTrack) string {
	if a := t.Artwork; a != nil {
		switch {
		case a.Large != "":
			return a.Large
		case a.Medium != "":
			return a.Medium
		case a.Small != "":
			return a.Small
		}
	}
	if p := t.User.ProfilePicture; p != nil && p.Medium != "" {
		return p.Medium
	}
	return ""
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// mapStreamable maps and filters a wire track list, dropping anything marked
// non-streamable.
func mapStreamable(tracks []wireTrack, baseURL string) []domain.Track {
	out := make([]domain.Track, 0, len(tracks))
	for _, t := range tracks {
		if !t.streamable() {
			continue
		}
		out = append(out, mapTrack(t, baseURL))
	}
	return out
}
