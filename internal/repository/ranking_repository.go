package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bothside-app/bothside-backend/internal/models"
)

// RankingRepository handles persisted collector rank snapshots.
type RankingRepository struct {
	db *DB
}

// NewRankingRepository creates a new ranking repository.
func NewRankingRepository(db *DB) *RankingRepository {
	return &RankingRepository{db: db}
}

// Upsert writes a rank snapshot keyed by user ID. Repeated calls converge to
// the latest computed state; there is no version check, last write wins.
func (r *RankingRepository) Upsert(ranking *models.UserRanking) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"tier", "level_index", "album_level_index", "value_level_index",
			"total_albums", "collection_value", "updated_at",
		}),
	}).Create(ranking).Error
}

// GetByUserID retrieves the persisted snapshot for a user. A user with no
// snapshot yields (nil, nil): absence is a defined state, not an error.
func (r *RankingRepository) GetByUserID(userID uint) (*models.UserRanking, error) {
	var ranking models.UserRanking
	err := r.db.Where("user_id = ?", userID).First(&ranking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ranking, nil
}

// GetTierDistribution returns, for every tier with at least one user, the user
// count at that tier plus the overall total.
func (r *RankingRepository) GetTierDistribution() ([]models.TierCount, error) {
	type row struct {
		Tier  string
		Count int64
	}

	var rows []row
	err := r.db.Model(&models.UserRanking{}).
		Select("tier, COUNT(*) AS count").
		Group("tier").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var total int64
	for _, rr := range rows {
		total += rr.Count
	}

	counts := make([]models.TierCount, 0, len(rows))
	for _, rr := range rows {
		counts = append(counts, models.TierCount{
			Tier:        rr.Tier,
			UsersAtTier: rr.Count,
			TotalUsers:  total,
		})
	}
	return counts, nil
}

// GetTop retrieves the highest-ranked snapshots ordered by collection value.
func (r *RankingRepository) GetTop(limit int) ([]models.UserRanking, error) {
	var rankings []models.UserRanking
	q := r.db.Preload("User").
		Order("collection_value DESC, total_albums DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rankings).Error
	return rankings, err
}
