// Package pricing keeps album marketplace stats fresh from Discogs.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bothside-app/bothside-backend/internal/cache"
	"github.com/bothside-app/bothside-backend/internal/discogs"
	"github.com/bothside-app/bothside-backend/internal/metrics"
	"github.com/bothside-app/bothside-backend/internal/models"
	"github.com/bothside-app/bothside-backend/internal/repository"
	"github.com/bothside-app/bothside-backend/pkg/logger"
)

// DiscogsClient interface for marketplace queries.
type DiscogsClient interface {
	GetPriceSuggestions(ctx context.Context, releaseID int) (discogs.PriceSuggestions, error)
}

// AlbumRepository interface for album stats persistence.
type AlbumRepository interface {
	GetByID(id uint) (*models.Album, error)
	UpsertStats(stats *models.AlbumStats) error
	GetStaleStats(cutoff time.Time, limit int) ([]models.Album, error)
}

// PriceStats is the reduced pricing for one release across condition grades.
type PriceStats struct {
	AvgPrice  float64 `json:"avg_price"`
	LowPrice  float64 `json:"low_price"`
	HighPrice float64 `json:"high_price"`
	Currency  string  `json:"currency"`
}

// Service fetches, reduces and caches marketplace pricing.
type Service struct {
	client    DiscogsClient
	albumRepo AlbumRepository
	cache     cache.Cache
	ttl       time.Duration
	log       *logger.Logger
}

// NewService creates a new pricing service.
func NewService(
	client DiscogsClient,
	albumRepo *repository.AlbumRepository,
	c cache.Cache,
	ttl time.Duration,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(client, albumRepo, c, ttl, log)
}

// NewServiceWithInterfaces creates a new pricing service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	client DiscogsClient,
	albumRepo AlbumRepository,
	c cache.Cache,
	ttl time.Duration,
	log *logger.Logger,
) *Service {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &Service{
		client:    client,
		albumRepo: albumRepo,
		cache:     c,
		ttl:       ttl,
		log:       log,
	}
}

func priceCacheKey(releaseID int) string {
	return fmt.Sprintf("discogs:price:%d", releaseID)
}

// RefreshAlbumStats updates an album's marketplace stats from Discogs, going
// through the Redis cache first so repeated refreshes inside the TTL do not
// spend API budget.
func (s *Service) RefreshAlbumStats(ctx context.Context, albumID uint) (*models.AlbumStats, error) {
	album, err := s.albumRepo.GetByID(albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to get album: %w", err)
	}
	if album.DiscogsReleaseID == nil {
		return nil, fmt.Errorf("album %d has no discogs release", albumID)
	}

	stats, err := s.lookupPriceStats(ctx, *album.DiscogsReleaseID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	row := &models.AlbumStats{
		AlbumID:   album.ID,
		AvgPrice:  &stats.AvgPrice,
		LowPrice:  &stats.LowPrice,
		HighPrice: &stats.HighPrice,
		Currency:  stats.Currency,
		CachedAt:  &now,
	}
	if err := s.albumRepo.UpsertStats(row); err != nil {
		return nil, fmt.Errorf("failed to upsert album stats: %w", err)
	}

	s.log.Debug().
		Uint("album_id", album.ID).
		Float64("avg_price", stats.AvgPrice).
		Msg("Refreshed album marketplace stats")

	return row, nil
}

// RefreshStaleStats refreshes up to limit albums whose pricing is older than
// the TTL. Per-album failures are logged and skipped so one bad release does
// not stall the batch.
func (s *Service) RefreshStaleStats(ctx context.Context, limit int) (int, error) {
	albums, err := s.albumRepo.GetStaleStats(time.Now().Add(-s.ttl), limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale stats: %w", err)
	}

	refreshed := 0
	for _, album := range albums {
		if _, err := s.RefreshAlbumStats(ctx, album.ID); err != nil {
			s.log.Warn().Err(err).Uint("album_id", album.ID).Msg("Failed to refresh album stats")
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

func (s *Service) lookupPriceStats(ctx context.Context, releaseID int) (*PriceStats, error) {
	key := priceCacheKey(releaseID)

	if cached, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Price cache read failed")
		metrics.PriceCacheLookupsTotal.WithLabelValues("error").Inc()
	} else if cached != "" {
		var stats PriceStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			metrics.PriceCacheLookupsTotal.WithLabelValues("hit").Inc()
			return &stats, nil
		}
		// Unparseable entry: fall through to a fresh fetch.
	}
	metrics.PriceCacheLookupsTotal.WithLabelValues("miss").Inc()

	suggestions, err := s.client.GetPriceSuggestions(ctx, releaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get price suggestions: %w", err)
	}
	if len(suggestions) == 0 {
		return nil, fmt.Errorf("no price suggestions for release %d", releaseID)
	}

	stats := reduceSuggestions(suggestions)

	if payload, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), s.ttl); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Price cache write failed")
		}
	}

	return stats, nil
}

// reduceSuggestions collapses per-condition suggestions to low/high/average.
func reduceSuggestions(suggestions discogs.PriceSuggestions) *PriceStats {
	stats := &PriceStats{}
	first := true
	var sum float64
	for _, s := range suggestions {
		if first {
			stats.LowPrice = s.Value
			stats.HighPrice = s.Value
			stats.Currency = s.Currency
			first = false
		}
		if s.Value < stats.LowPrice {
			stats.LowPrice = s.Value
		}
		if s.Value > stats.HighPrice {
			stats.HighPrice = s.Value
		}
		sum += s.Value
	}
	stats.AvgPrice = sum / float64(len(suggestions))
	return stats
}
