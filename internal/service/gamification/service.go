package gamification

import (
	"context"
	"fmt"
	"time"

	"github.com/bothside-app/bothside-backend/internal/metrics"
	"github.com/bothside-app/bothside-backend/internal/models"
	"github.com/bothside-app/bothside-backend/internal/repository"
	"github.com/bothside-app/bothside-backend/pkg/logger"
)

// CollectionRepository interface for collection aggregation.
type CollectionRepository interface {
	GetUserCollectionMetrics(userID uint) (*repository.UserCollectionMetrics, error)
}

// RankingRepository interface for rank snapshot persistence.
type RankingRepository interface {
	Upsert(ranking *models.UserRanking) error
	GetByUserID(userID uint) (*models.UserRanking, error)
	GetTierDistribution() ([]models.TierCount, error)
}

// RankedUser pairs the collection summary with the rank computed from it.
type RankedUser struct {
	UserID  uint                             `json:"user_id"`
	Summary repository.UserCollectionMetrics `json:"summary"`
	Rank    CollectorRank                    `json:"rank"`
}

// TierShare is the fraction of ranked users sharing a user's tier.
type TierShare struct {
	Tier        string  `json:"tier"`
	UsersAtTier int64   `json:"users_at_tier"`
	TotalUsers  int64   `json:"total_users"`
	Share       float64 `json:"share"`
}

// Service orchestrates rank computation, persistence and population queries.
type Service struct {
	collectionRepo CollectionRepository
	rankingRepo    RankingRepository
	table          *TierTable
	log            *logger.Logger
}

// NewService creates a new gamification service with concrete repository types.
func NewService(
	collectionRepo *repository.CollectionRepository,
	rankingRepo *repository.RankingRepository,
	table *TierTable,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(collectionRepo, rankingRepo, table, log)
}

// NewServiceWithInterfaces creates a new gamification service with interface
// dependencies (useful for testing). A nil table selects the built-in tiers.
func NewServiceWithInterfaces(
	collectionRepo CollectionRepository,
	rankingRepo RankingRepository,
	table *TierTable,
	log *logger.Logger,
) *Service {
	if table == nil {
		table = DefaultTierTable()
	}
	return &Service{
		collectionRepo: collectionRepo,
		rankingRepo:    rankingRepo,
		table:          table,
		log:            log,
	}
}

// TierTable returns the table the service ranks against.
func (s *Service) TierTable() *TierTable {
	return s.table
}

// GetRankForUser summarizes the live collection and composes a rank without
// touching the persisted snapshot. This is the degraded path the rank display
// falls back to when the persistence layer is unavailable.
//
//nolint:revive,unparam // ctx reserved for future context-aware operations
func (s *Service) GetRankForUser(ctx context.Context, userID uint) (*RankedUser, error) {
	summary, err := s.collectionRepo.GetUserCollectionMetrics(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection metrics: %w", err)
	}

	rank := s.table.ComputeCollectorRank(float64(summary.TotalAlbums), summary.CollectionValue)
	metrics.RankComputationsTotal.WithLabelValues(rank.Tier).Inc()

	return &RankedUser{UserID: userID, Summary: *summary, Rank: rank}, nil
}

// RefreshUserRank recomputes the summary and rank from live collection data
// and upserts the snapshot row. Idempotent: repeated calls converge to the
// latest computed state.
func (s *Service) RefreshUserRank(ctx context.Context, userID uint) (*RankedUser, error) {
	ranked, err := s.GetRankForUser(ctx, userID)
	if err != nil {
		metrics.RankRefreshesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	snapshot := &models.UserRanking{
		UserID:          userID,
		Tier:            ranked.Rank.Tier,
		LevelIndex:      ranked.Rank.LevelIndex,
		AlbumLevelIndex: ranked.Rank.AlbumLevelIndex,
		ValueLevelIndex: ranked.Rank.ValueLevelIndex,
		TotalAlbums:     ranked.Summary.TotalAlbums,
		CollectionValue: ranked.Summary.CollectionValue,
		UpdatedAt:       time.Now().UTC(),
	}

	if err := s.rankingRepo.Upsert(snapshot); err != nil {
		metrics.RankRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to upsert ranking snapshot: %w", err)
	}

	metrics.RankRefreshesTotal.WithLabelValues("success").Inc()
	metrics.CollectionSizeAlbums.Observe(float64(ranked.Summary.TotalAlbums))
	metrics.CollectionValueAmount.Observe(ranked.Summary.CollectionValue)

	s.log.Debug().
		Uint("user_id", userID).
		Str("tier", ranked.Rank.Tier).
		Int("level", ranked.Rank.LevelIndex).
		Msg("Refreshed collector rank")

	return ranked, nil
}

// GetPersistedRank returns the stored snapshot, or nil when the user was
// never ranked.
//
//nolint:revive,unparam // ctx reserved for future context-aware operations
func (s *Service) GetPersistedRank(ctx context.Context, userID uint) (*models.UserRanking, error) {
	ranking, err := s.rankingRepo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ranking snapshot: %w", err)
	}
	return ranking, nil
}

// GetTierDistribution returns the population spread across tiers and refreshes
// the per-tier gauge.
//
//nolint:revive,unparam // ctx reserved for future context-aware operations
func (s *Service) GetTierDistribution(ctx context.Context) ([]models.TierCount, error) {
	counts, err := s.rankingRepo.GetTierDistribution()
	if err != nil {
		return nil, fmt.Errorf("failed to get tier distribution: %w", err)
	}

	for _, c := range counts {
		metrics.UsersPerTier.WithLabelValues(c.Tier).Set(float64(c.UsersAtTier))
	}
	return counts, nil
}

// GetUserTierShare returns the fraction of ranked users at the user's tier.
// Returns nil when the user has no persisted ranking or the distribution is
// empty: absence must stay distinguishable from a genuine 0% share.
func (s *Service) GetUserTierShare(ctx context.Context, userID uint) (*TierShare, error) {
	ranking, err := s.GetPersistedRank(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ranking == nil {
		return nil, nil
	}

	counts, err := s.rankingRepo.GetTierDistribution()
	if err != nil {
		return nil, fmt.Errorf("failed to get tier distribution: %w", err)
	}

	for _, c := range counts {
		if c.Tier != ranking.Tier {
			continue
		}
		if c.TotalUsers == 0 {
			return nil, nil
		}
		return &TierShare{
			Tier:        c.Tier,
			UsersAtTier: c.UsersAtTier,
			TotalUsers:  c.TotalUsers,
			Share:       float64(c.UsersAtTier) / float64(c.TotalUsers),
		}, nil
	}

	// Snapshot exists but the distribution does not include its tier. The
	// snapshot is authoritative for the user; treat the distribution as stale.
	return nil, nil
}
