package services

import (
	"context"

	"github.com/karl2522/audiora/backend/internal/core/domain"
	"github.com/karl2522/audiora/backend/internal/core/ports"
)

// mockHistory is a canned HistoryStore. FindAllForUser returns events as-is;
// FindByUserID applies only the StartDate filter, which is all the pool
// assembler uses.
type mockHistory struct {
	events []domain.PlayEvent
	err    error
}

func (m *mockHistory) FindAllForUser(_ context.Context, _ string, limit int) ([]domain.PlayEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.events) > limit {
		return m.events[:limit], nil
	}
	return m.events, nil
}

func (m *mockHistory) FindByUserID(_ context.Context, _ string, q ports.HistoryQuery) ([]domain.PlayEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.PlayEvent, 0, len(m.events))
	for _, e := range m.events {
		if !q.StartDate.IsZero() && e.StartedAt.Before(q.StartDate) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockHistory) CountByUserID(_ context.Context, _ string, _ ports.HistoryQuery) (int, error) {
	return len(m.events), m.err
}

func (m *mockHistory) LogStart(_ context.Context, _, _ string, _ ports.TrackPlayData) (domain.PlayEvent, error) {
	return domain.PlayEvent{}, m.err
}

func (m *mockHistory) LogComplete(_ context.Context, _, _ string, _ int) error { return m.err }
func (m *mockHistory) LogSkip(_ context.Context, _, _ string, _ int) error     { return m.err }

// mockCatalog returns canned slices per source and counts calls so tests can
// assert that a cache hit skips the catalog entirely.
type mockCatalog struct {
	genreTracks     []domain.Track
	artistTracks    []domain.Track
	discoveryTracks []domain.Track
	trendingTracks  []domain.Track
	searchTracks    []domain.Track
	track           domain.Track
	streamURL       string
	err             error
	trendingErr     error

	calls          int
	genreQuery     []string
	artistQuery    []string
	discoveryQuery []string
}

func (m *mockCatalog) SearchByGenres(_ context.Context, genres []string, limit int) ([]domain.Track, error) {
	m.calls++
	m.genreQuery = genres
	return capTracks(m.genreTracks, limit), m.err
}

func (m *mockCatalog) SearchByArtists(_ context.Context, artists []string, limit int) ([]domain.Track, error) {
	m.calls++
	m.artistQuery = artists
	return capTracks(m.artistTracks, limit), m.err
}

func (m *mockCatalog) GetDiscoveryTracks(_ context.Context, genres []string, limit int) ([]domain.Track, error) {
	m.calls++
	m.discoveryQuery = genres
	return capTracks(m.discoveryTracks, limit), m.err
}

func (m *mockCatalog) GetTrendingTracks(_ context.Context, _ string, limit int) ([]domain.Track, error) {
	m.calls++
	if m.trendingErr != nil {
		return nil, m.trendingErr
	}
	return capTracks(m.trendingTracks, limit), nil
}

func (m *mockCatalog) SearchTracks(_ context.Context, _ string, limit, _ int) ([]domain.Track, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return capTracks(m.searchTracks, limit), nil
}

func (m *mockCatalog) GetTrack(_ context.Context, _ string) (domain.Track, error) {
	m.calls++
	return m.track, m.err
}

func (m *mockCatalog) StreamURL(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.streamURL, m.err
}

func capTracks(tracks []domain.Track, limit int) []domain.Track {
	if m := len(tracks); limit > 0 && m > limit {
		tracks = tracks[:limit]
	}
	return append([]domain.Track(nil), tracks...)
}

// mockAdvisor returns a fixed parameter set or error.
type mockAdvisor struct {
	params *domain.SessionParameters
	err    error
	calls  int
}

func (m *mockAdvisor) GetSessionParameters(_ context.Context, _ domain.TasteProfile, _ string) (*domain.SessionParameters, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.params, nil
}
