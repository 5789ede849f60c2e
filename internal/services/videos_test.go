package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Front Squat Basics", "front-squat-basics"},
		{"  Mobility & Recovery  ", "mobility-recovery"},
		{"Clean + Jerk: Part 2", "clean-jerk-part-2"},
		{"---", ""},
	}
	for _, tc := range cases {
		got := Slugify(tc.in)
		if tc.want == "" {
			// degenerate input falls back to a generated id
			if got == "" {
				t.Errorf("Slugify(%q) returned empty", tc.in)
			}
			continue
		}
		if got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolveSlugSuffixesTakenNames(t *testing.T) {
	existing := map[string]bool{
		"front-squat": true,
	}
	taken := func(candidate string) (bool, error) {
		return existing[candidate], nil
	}

	slug, err := resolveSlug("front-squat", taken)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if slug != "front-squat-2" {
		t.Fatalf("slug = %q, want front-squat-2", slug)
	}
	existing[slug] = true

	slug, err = resolveSlug("front-squat", taken)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if slug != "front-squat-3" {
		t.Fatalf("slug = %q, want front-squat-3", slug)
	}

	slug, err = resolveSlug("overhead-press", taken)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if slug != "overhead-press" {
		t.Fatalf("slug = %q, want the free base unchanged", slug)
	}
}

func TestPlaybackAndThumbnailURLs(t *testing.T) {
	playback := "abc123"
	if got := PlaybackURL("https://stream.example.com/", &playback); got != "https://stream.example.com/abc123.m3u8" {
		t.Fatalf("PlaybackURL = %q", got)
	}
	if got := ThumbnailURL("https://stream.example.com", &playback); got != "https://stream.example.com/abc123/thumbnail.jpg" {
		t.Fatalf("ThumbnailURL = %q", got)
	}
	if got := PlaybackURL("https://stream.example.com", nil); got != "" {
		t.Fatalf("PlaybackURL(nil) = %q, want empty", got)
	}
	empty := "  "
	if got := ThumbnailURL("https://stream.example.com", &empty); got != "" {
		t.Fatalf("ThumbnailURL(blank) = %q, want empty", got)
	}
}

func TestGetAssetMapsProviderStatus(t *testing.T) {
	cases := []struct {
		provider string
		want     string
	}{
		{"preparing", "PROCESSING"},
		{"ready", "READY"},
		{"errored", "ERRORED"},
		{"something-else", "UPLOADING"},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/video/v1/assets/asset-1" {
				t.Errorf("path = %q", r.URL.Path)
			}
			if r.Header.Get("Authorization") != "Bearer token-1" {
				t.Errorf("auth header = %q", r.Header.Get("Authorization"))
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{"status":"` + tc.provider + `","duration":93.4,"playback_ids":[{"id":"pb-1"}]}}`))
		}))
		provider := VideoProvider{BaseURL: srv.URL, Token: "token-1"}
		asset, err := provider.GetAsset(context.Background(), "asset-1")
		srv.Close()
		if err != nil {
			t.Fatalf("GetAsset(%q): %v", tc.provider, err)
		}
		if asset.Status != tc.want {
			t.Errorf("status for %q = %q, want %q", tc.provider, asset.Status, tc.want)
		}
		if asset.PlaybackID != "pb-1" {
			t.Errorf("playback id = %q", asset.PlaybackID)
		}
		if asset.DurationSeconds != 93 {
			t.Errorf("duration = %d", asset.DurationSeconds)
		}
	}
}

func TestGetAssetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	provider := VideoProvider{BaseURL: srv.URL}
	_, err := provider.GetAsset(context.Background(), "missing")
	serr, ok := err.(ServiceError)
	if !ok || serr.Status != http.StatusNotFound {
		t.Fatalf("expected 404 service error, got %v", err)
	}
}
