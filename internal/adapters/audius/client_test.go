package audius

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/karl2522/audiora/backend/internal/core/domain"
	"github.com/karl2522/audiora/backend/internal/core/ports"
)

func newTestClient(mirrors ...string) *Client {
	return NewClient(Config{
		Mirrors:   mirrors,
		RateLimit: 1000,
		Logger:    zerolog.Nop(),
	})
}

const searchPayload = `{
	"data": [
		{
			"id": "t1",
			"title": "Midnight Drive",
			"user": {"id": "u9", "name": "Neon Coast", "handle": "neoncoast"},
			"artwork": {"150x150": "s.jpg", "480x480": "m.jpg", "1000x1000": "l.jpg"},
			"duration": 212,
			"genre": "Electronic",
			"mood": "Energizing",
			"tags": "synthwave, retro , ",
			"play_count": 4120,
			"favorite_count": 77,
			"repost_count": 12,
			"permalink": "/neoncoast/midnight-drive"
		},
		{
			"id": "t2",
			"title": "Hidden",
			"user": {"id": "u2", "handle": "ghost"},
			"duration": 90,
			"is_streamable": false
		},
		{
			"id": "t3",
			"title": "Bare",
			"user": {"id": "u3", "handle": "bare", "profile_picture": {"480x480": "pfp.jpg"}},
			"duration": 130
		}
	]
}`

func TestClient_SearchTracks(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tracks/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("query")
		if r.URL.Query().Get("app_name") != "Audiora" {
			t.Error("missing app_name parameter")
		}
		fmt.Fprint(w, searchPayload)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	got, err := c.SearchTracks(context.Background(), "synthwave", 20, 0)
	if err != nil {
		t.Fatalf("SearchTracks: %v", err)
	}
	if gotQuery != "synthwave" {
		t.Fatalf("query = %q", gotQuery)
	}

	// Non-streamable t2 is dropped.
	if len(got) != 2 {
		t.Fatalf("tracks = %d, want 2", len(got))
	}

	first := got[0]
	if first.Artist != "Neon Coast" {
		t.Fatalf("Artist = %q, want display name", first.Artist)
	}
	if first.Artwork != "l.jpg" {
		t.Fatalf("Artwork = %q, want largest size", first.Artwork)
	}
	if !reflect.DeepEqual(first.Tags, []string{"synthwave", "retro"}) {
		t.Fatalf("Tags = %v", first.Tags)
	}
	if first.Duration != 212 {
		t.Fatalf("Duration = %d, want seconds as-is", first.Duration)
	}
	if want := srv.URL + "/v1/tracks/t1/stream"; first.StreamURL != want {
		t.Fatalf("StreamURL = %q, want %q", first.StreamURL, want)
	}

	// t3 has no artwork and no display name: handle and profile picture serve.
	third := got[1]
	if third.Artist != "bare" {
		t.Fatalf("Artist = %q, want handle fallback", third.Artist)
	}
	if third.Artwork != "pfp.jpg" {
		t.Fatalf("Artwork = %q, want profile picture fallback", third.Artwork)
	}
}

func TestClient_GetTrendingTracks(t *testing.T) {
	var gotGenre string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tracks/trending" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotGenre = r.URL.Query().Get("genre")
		fmt.Fprint(w, searchPayload)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	got, err := c.GetTrendingTracks(context.Background(), "Electronic", 1)
	if err != nil {
		t.Fatalf("GetTrendingTracks: %v", err)
	}
	if gotGenre != "Electronic" {
		t.Fatalf("genre param = %q", gotGenre)
	}
	// Capped to the requested limit after filtering.
	if len(got) != 1 {
		t.Fatalf("tracks = %d, want 1", len(got))
	}
}

func TestClient_GetTrack_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data": []}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.GetTrack(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// TestClient_MirrorFailover verifies an unreachable mirror is skipped and the
// next one serves the request.
func TestClient_MirrorFailover(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	dead.Close() // connection refused, no retry, immediate failover

	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, searchPayload)
	}))
	defer live.Close()

	c := newTestClient(dead.URL, live.URL)
	got, err := c.SearchTracks(context.Background(), "anything", 10, 0)
	if err != nil {
		t.Fatalf("SearchTracks: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected tracks from the second mirror")
	}
}

// TestClient_RetriesServerErrors verifies a 5xx is retried on the same mirror
// before failing over.
func TestClient_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, searchPayload)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if _, err := c.SearchTracks(context.Background(), "anything", 10, 0); err != nil {
		t.Fatalf("SearchTracks: %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("hits = %d, want 2", hits.Load())
	}
}

// TestClient_AllMirrorsExhausted verifies the sentinel error when no mirror
// answers.
func TestClient_AllMirrorsExhausted(t *testing.T) {
	a := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	a.Close()
	b := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	b.Close()

	c := newTestClient(a.URL, b.URL)
	_, err := c.SearchTracks(context.Background(), "anything", 10, 0)
	if !errors.Is(err, ports.ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
}

// TestClient_SearchByGenres verifies the limit splits across per-genre
// sub-queries.
func TestClient_SearchByGenres(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("query"))
		if got := r.URL.Query().Get("limit"); got != "100" {
			t.Errorf("limit = %s, want 100", got)
		}
		fmt.Fprint(w, `{"data": []}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if _, err := c.SearchByGenres(context.Background(), []string{"Lo-Fi", "Jazz", "Rock"}, 300); err != nil {
		t.Fatalf("SearchByGenres: %v", err)
	}
	if !reflect.DeepEqual(queries, []string{"Lo-Fi", "Jazz", "Rock"}) {
		t.Fatalf("queries = %v", queries)
	}
}

// TestClient_GetDiscoveryTracks verifies discovery uses genre-scoped trending
// and falls back to global trending without genre signal.
func TestClient_GetDiscoveryTracks(t *testing.T) {
	var genres []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tracks/trending" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		genres = append(genres, r.URL.Query().Get("genre"))
		fmt.Fprint(w, `{"data": []}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if _, err := c.GetDiscoveryTracks(context.Background(), []string{"Lo-Fi", "Jazz"}, 100); err != nil {
		t.Fatalf("GetDiscoveryTracks: %v", err)
	}
	if _, err := c.GetDiscoveryTracks(context.Background(), nil, 100); err != nil {
		t.Fatalf("GetDiscoveryTracks global: %v", err)
	}
	if !reflect.DeepEqual(genres, []string{"Lo-Fi", "Jazz", ""}) {
		t.Fatalf("genres = %v", genres)
	}
}
