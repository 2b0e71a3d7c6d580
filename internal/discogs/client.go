// Package discogs provides a rate-limited client for the Discogs REST API.
package discogs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bothside-app/bothside-backend/internal/config"
	"github.com/bothside-app/bothside-backend/internal/metrics"
	"github.com/bothside-app/bothside-backend/pkg/logger"
)

// Client calls the Discogs API with token authentication. All requests pass
// through a shared limiter honoring the 20 requests / 60 seconds budget
// Discogs enforces per token.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Logger
}

// NewClient creates a new Discogs client.
func NewClient(cfg *config.DiscogsConfig, log *logger.Logger) *Client {
	window := time.Duration(cfg.RateWindow) * time.Second
	if window <= 0 {
		window = time.Minute
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 20
	}

	return &Client{
		baseURL:    cfg.URL,
		token:      cfg.Token,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit),
		log:        log,
	}
}

// SearchResult is one release hit from a database search.
type SearchResult struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	Year       string   `json:"year"`
	Label      []string `json:"label"`
	Thumb      string   `json:"thumb"`
	CoverImage string   `json:"cover_image"`
	Country    string   `json:"country"`
	Format     []string `json:"format"`
}

// SearchResponse is the paginated search payload.
type SearchResponse struct {
	Pagination struct {
		Page    int `json:"page"`
		Pages   int `json:"pages"`
		PerPage int `json:"per_page"`
		Items   int `json:"items"`
	} `json:"pagination"`
	Results []SearchResult `json:"results"`
}

// Release is a Discogs release with the fields the catalog consumes.
type Release struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Year    int    `json:"year"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
	Thumb string `json:"thumb"`
}

// PriceSuggestion is a suggested price for one condition grade.
type PriceSuggestion struct {
	Currency string  `json:"currency"`
	Value    float64 `json:"value"`
}

// PriceSuggestions maps condition grade (e.g. "Very Good (VG)") to a price.
type PriceSuggestions map[string]PriceSuggestion

// SearchReleases queries the Discogs database for vinyl releases.
func (c *Client) SearchReleases(ctx context.Context, query string, page int) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("type", "release")
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", "20")

	var resp SearchResponse
	if err := c.get(ctx, "/database/search?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRelease fetches a single release by ID.
func (c *Client) GetRelease(ctx context.Context, releaseID int) (*Release, error) {
	var release Release
	if err := c.get(ctx, fmt.Sprintf("/releases/%d", releaseID), &release); err != nil {
		return nil, err
	}
	return &release, nil
}

// GetPriceSuggestions fetches marketplace price suggestions for a release.
func (c *Client) GetPriceSuggestions(ctx context.Context, releaseID int) (PriceSuggestions, error) {
	var suggestions PriceSuggestions
	if err := c.get(ctx, fmt.Sprintf("/marketplace/price_suggestions/%d", releaseID), &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Discogs token="+c.token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.DiscogsRequestsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("discogs request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.DiscogsRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("endpoint", endpoint).
			Msg("Discogs returned non-OK status")
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode discogs response: %w", err)
	}
	return nil
}

// APIError is a non-200 answer from Discogs.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discogs: status %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether the release does not exist on Discogs.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}
