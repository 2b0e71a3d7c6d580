package discogs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bothside-app/bothside-backend/internal/config"
	"github.com/bothside-app/bothside-backend/pkg/logger"
)

// newTestClient points a client at a local test server with a generous limiter.
func newTestClient(serverURL string) *Client {
	cfg := &config.DiscogsConfig{
		URL:        serverURL,
		Token:      "test-token",
		UserAgent:  "bothside-test/1.0",
		RateLimit:  1000,
		RateWindow: 1,
	}
	return NewClient(cfg, logger.New("debug", "text", "stdout"))
}

func TestGetPriceSuggestions(t *testing.T) {
	var gotAuth, gotUserAgent, gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUserAgent = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"Mint (M)": {"currency": "EUR", "value": 59.5},
			"Very Good (VG)": {"currency": "EUR", "value": 24.0}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	suggestions, err := client.GetPriceSuggestions(context.Background(), 12345)
	if err != nil {
		t.Fatalf("GetPriceSuggestions failed: %v", err)
	}

	if gotAuth != "Discogs token=test-token" {
		t.Errorf("Expected token auth header, got %q", gotAuth)
	}
	if gotUserAgent != "bothside-test/1.0" {
		t.Errorf("Expected user agent header, got %q", gotUserAgent)
	}
	if gotPath != "/marketplace/price_suggestions/12345" {
		t.Errorf("Unexpected path %q", gotPath)
	}

	if len(suggestions) != 2 {
		t.Fatalf("Expected 2 suggestions, got %d", len(suggestions))
	}
	if suggestions["Mint (M)"].Value != 59.5 {
		t.Errorf("Expected mint value 59.5, got %f", suggestions["Mint (M)"].Value)
	}
	if suggestions["Very Good (VG)"].Currency != "EUR" {
		t.Errorf("Expected EUR, got %s", suggestions["Very Good (VG)"].Currency)
	}
}

func TestGetRelease(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/releases/999" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{
			"id": 999,
			"title": "Kind of Blue",
			"year": 1959,
			"artists": [{"name": "Miles Davis"}],
			"labels": [{"name": "Columbia"}]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	release, err := client.GetRelease(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetRelease failed: %v", err)
	}

	if release.Title != "Kind of Blue" {
		t.Errorf("Expected title 'Kind of Blue', got %q", release.Title)
	}
	if release.Year != 1959 {
		t.Errorf("Expected year 1959, got %d", release.Year)
	}
	if len(release.Artists) != 1 || release.Artists[0].Name != "Miles Davis" {
		t.Errorf("Unexpected artists: %+v", release.Artists)
	}
}

func TestSearchReleases(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "nirvana nevermind" {
			t.Errorf("Unexpected query %q", q.Get("q"))
		}
		if q.Get("type") != "release" {
			t.Errorf("Expected type=release, got %q", q.Get("type"))
		}
		w.Write([]byte(`{
			"pagination": {"page": 1, "pages": 3, "per_page": 20, "items": 55},
			"results": [
				{"id": 1, "title": "Nirvana - Nevermind", "year": "1991"},
				{"id": 2, "title": "Nirvana - Nevermind (Reissue)", "year": "2011"}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	resp, err := client.SearchReleases(context.Background(), "nirvana nevermind", 1)
	if err != nil {
		t.Fatalf("SearchReleases failed: %v", err)
	}

	if resp.Pagination.Items != 55 {
		t.Errorf("Expected 55 items, got %d", resp.Pagination.Items)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(resp.Results))
	}
	if resp.Results[0].ID != 1 {
		t.Errorf("Expected first result ID 1, got %d", resp.Results[0].ID)
	}
}

func TestAPIError_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "Release not found."}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.GetPriceSuggestions(context.Background(), 1)
	if err == nil {
		t.Fatal("Expected an error for 404, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %T", err)
	}
	if !apiErr.IsNotFound() {
		t.Errorf("Expected IsNotFound, status %d", apiErr.StatusCode)
	}
}

func TestAPIError_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.GetRelease(context.Background(), 1)
	if err == nil {
		t.Fatal("Expected an error for 429, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %T", err)
	}
	if apiErr.IsNotFound() {
		t.Error("429 must not report as not found")
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.GetRelease(ctx, 1); err == nil {
		t.Fatal("Expected an error with a cancelled context, got nil")
	}
}
