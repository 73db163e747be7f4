package audius

import (
	"context"
	"fmt"
	"strconv"

	"github.com/karl2522/audiora/backend/internal/core/domain"
)

// SearchTracks queries the track search endpoint.
func (c *Client) SearchTracks(ctx context.Context, query string, limit, offset int) ([]domain.Track, error) {
	params := baseParams()
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var resp wireTrackList
	if err := c.getJSON(ctx, "/v1/tracks/search?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return mapStreamable(resp.Data, c.mirrors[0]), nil
}

// GetTrendingTracks returns trending tracks, optionally scoped to one genre.
func (c *Client) GetTrendingTracks(ctx context.Context, genre string, limit int) ([]domain.Track, error) {
	params := baseParams()
	params.Set("limit", strconv.Itoa(limit))
	if genre != "" {
		params.Set("genre", genre)
	}

	var resp wireTrackList
	if err := c.getJSON(ctx, "/v1/tracks/trending?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	tracks := mapStreamable(resp.Data, c.mirrors[0])
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

// GetTrack fetches a single track by ID. Missing or non-streamable tracks
// surface as domain.ErrNotFound.
func (c *Client) GetTrack(ctx context.Context, trackID string) (domain.Track, error) {
	var resp wireTrackList
	if err := c.getJSON(ctx, "/v1/tracks/"+trackID+"?"+baseParams().Encode(), &resp); err != nil {
		return domain.Track{}, err
	}
	if len(resp.Data) == 0 || !resp.Data[0].streamable() {
		return domain.Track{}, fmt.Errorf("audius: track %s: %w", trackID, domain.ErrNotFound)
	}
	return mapTrack(resp.Data[0], c.mirrors[0]), nil
}

// StreamURL resolves the playable URL for a track.
func (c *Client) StreamURL(ctx context.Context, trackID string) (string, error) {
	track, err := c.GetTrack(ctx, trackID)
	if err != nil {
		return "", err
	}
	return track.StreamURL, nil
}

// SearchByGenres gathers candidates for the profile's top genres, splitting
// the limit evenly across per-genre sub-queries. Partial results are fine;
// an individual empty genre just contributes nothing.
func (c *Client) SearchByGenres(ctx context.Context, genres []string, limit int) ([]domain.Track, error) {
	if len(genres) == 0 || limit <= 0 {
		return nil, nil
	}
	perGenre := limit / len(genres)
	if perGenre < 1 {
		perGenre = 1
	}

	pool := make([]domain.Track, 0, limit)
	for _, genre := range genres {
		tracks, err := c.SearchTracks(ctx, genre, perGenre, 0)
		if err != nil {
			return nil, err
		}
		pool = append(pool, tracks...)
	}
	return pool, nil
}

// SearchByArtists gathers candidates from the profile's top artists.
func (c *Client) SearchByArtists(ctx context.Context, artists []string, limit int) ([]domain.Track, error) {
	if len(artists) == 0 || limit <= 0 {
		return nil, nil
	}
	perArtist := limit / len(artists)
	if perArtist < 1 {
		perArtist = 1
	}

	pool := make([]domain.Track, 0, limit)
	for _, artist := range artists {
		tracks, err := c.SearchTracks(ctx, artist, perArtist, 0)
		if err != nil {
			return nil, err
		}
		pool = append(pool, tracks...)
	}
	return pool, nil
}

// GetDiscoveryTracks pulls trending tracks in the profile's genres to seed
// novelty. With no genre signal it falls back to global trending.
func (c *Client) GetDiscoveryTracks(ctx context.Context, genres []string, limit int) ([]domain.Track, error) {
	if limit <= 0 {
		return nil, nil
	}
	if len(genres) == 0 {
		return c.GetTrendingTracks(ctx, "", limit)
	}

	perGenre := limit / len(genres)
	if perGenre < 1 {
		perGenre = 1
	}

	pool := make([]domain.Track, 0, limit)
	for _, genre := range genres {
		tracks, err := c.GetTrendingTracks(ctx, genre, perGenre)
		if err != nil {
			return nil, err
		}
		pool = append(pool, tracks...)
	}
	return pool, nil
}
