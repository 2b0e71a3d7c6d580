// Package leaderboard provides collection-based leaderboard generation.
package leaderboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/bothside-app/bothside-backend/internal/models"
	"github.com/bothside-app/bothside-backend/internal/repository"
	"github.com/bothside-app/bothside-backend/internal/service/gamification"
	"github.com/bothside-app/bothside-backend/pkg/logger"
)

// CollectionRepository interface for population-wide collection aggregation.
type CollectionRepository interface {
	GetCollectionMetricsByUser() ([]repository.UserCollectionMetrics, error)
}

// UserRepository interface for user lookups.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
}

// Entry is a single leaderboard position.
type Entry struct {
	Position        int     `json:"position"`
	UserID          uint    `json:"user_id"`
	Username        string  `json:"username"`
	FullName        string  `json:"full_name"`
	TotalAlbums     int     `json:"total_albums"`
	CollectionValue float64 `json:"collection_value"`
	Tier            string  `json:"tier"`
	LevelIndex      int     `json:"level_index"`
}

// Service builds the collector leaderboard from live collection data.
type Service struct {
	collectionRepo CollectionRepository
	userRepo       UserRepository
	table          *gamification.TierTable
	log            *logger.Logger
}

// NewService creates a new leaderboard service with concrete repository types.
func NewService(
	collectionRepo *repository.CollectionRepository,
	userRepo *repository.UserRepository,
	table *gamification.TierTable,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(collectionRepo, userRepo, table, log)
}

// NewServiceWithInterfaces creates a new leaderboard service with interface
// dependencies (useful for testing). A nil table selects the built-in tiers.
func NewServiceWithInterfaces(
	collectionRepo CollectionRepository,
	userRepo UserRepository,
	table *gamification.TierTable,
	log *logger.Logger,
) *Service {
	if table == nil {
		table = gamification.DefaultTierTable()
	}
	return &Service{
		collectionRepo: collectionRepo,
		userRepo:       userRepo,
		table:          table,
		log:            log,
	}
}

// GetLeaderboard returns collectors ordered by collection value descending,
// album count as tie-break, with positions assigned after sorting.
//
//nolint:revive,unparam // ctx reserved for future context-aware operations
func (s *Service) GetLeaderboard(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.collectionRepo.GetCollectionMetricsByUser()
	if err != nil {
		return nil, fmt.Errorf("failed to get collection metrics: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		user, err := s.userRepo.GetByID(row.UserID)
		if err != nil {
			s.log.Warn().Err(err).Uint("user_id", row.UserID).Msg("Failed to get user")
			continue
		}

		rank := s.table.ComputeCollectorRank(float64(row.TotalAlbums), row.CollectionValue)
		entries = append(entries, Entry{
			UserID:          row.UserID,
			Username:        user.Username,
			FullName:        user.FullName,
			TotalAlbums:     row.TotalAlbums,
			CollectionValue: row.CollectionValue,
			Tier:            rank.Tier,
			LevelIndex:      rank.LevelIndex,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CollectionValue != entries[j].CollectionValue {
			return entries[i].CollectionValue > entries[j].CollectionValue
		}
		return entries[i].TotalAlbums > entries[j].TotalAlbums
	})

	for i := range entries {
		entries[i].Position = i + 1
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}

// GetUserPosition returns a user's leaderboard position, or 0 when the user
// has no collection rows.
func (s *Service) GetUserPosition(ctx context.Context, userID uint) (int, error) {
	entries, err := s.GetLeaderboard(ctx, 0)
	if err != nil {
		return 0, err
	}

	for _, entry := range entries {
		if entry.UserID == userID {
			return entry.Position, nil
		}
	}
	return 0, nil
}
