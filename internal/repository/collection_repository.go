package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bothside-app/bothside-backend/internal/models"
)

// CollectionRepository handles user collection database operations.
type CollectionRepository struct {
	db *DB
}

// NewCollectionRepository creates a new collection repository.
func NewCollectionRepository(db *DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// Add puts an album into a user's collection. Idempotent: adding an album the
// user already owns leaves the existing row untouched.
func (r *CollectionRepository) Add(userID, albumID uint, isGem bool) error {
	item := &models.CollectionItem{
		UserID:  userID,
		AlbumID: albumID,
		IsGem:   isGem,
		AddedAt: time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "album_id"}},
		DoNothing: true,
	}).Create(item).Error
}

// Remove deletes an album from a user's collection.
func (r *CollectionRepository) Remove(userID, albumID uint) error {
	return r.db.
		Where("user_id = ? AND album_id = ?", userID, albumID).
		Delete(&models.CollectionItem{}).Error
}

// GetUserCollection retrieves a user's collection with albums and stats preloaded.
func (r *CollectionRepository) GetUserCollection(userID uint) ([]models.CollectionItem, error) {
	var items []models.CollectionItem
	err := r.db.
		Where("user_id = ?", userID).
		Preload("Album").
		Preload("Album.Stats").
		Order("added_at DESC").
		Find(&items).Error
	return items, err
}

// GetUserGems retrieves the user's gem-flagged albums.
func (r *CollectionRepository) GetUserGems(userID uint) ([]models.CollectionItem, error) {
	var items []models.CollectionItem
	err := r.db.
		Where("user_id = ? AND is_gem = ?", userID, true).
		Preload("Album").
		Preload("Album.Stats").
		Order("added_at DESC").
		Find(&items).Error
	return items, err
}

// IsInCollection checks whether a user owns an album.
func (r *CollectionRepository) IsInCollection(userID, albumID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.CollectionItem{}).
		Where("user_id = ? AND album_id = ?", userID, albumID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ToggleGem flips the gem flag on a collection item and returns the new state.
func (r *CollectionRepository) ToggleGem(userID, albumID uint) (bool, error) {
	var item models.CollectionItem
	err := r.db.
		Where("user_id = ? AND album_id = ?", userID, albumID).
		First(&item).Error
	if err != nil {
		return false, err
	}

	item.IsGem = !item.IsGem
	if err := r.db.Save(&item).Error; err != nil {
		return false, err
	}
	return item.IsGem, nil
}

// UserCollectionMetrics are the two scalars the ranking core consumes for one user.
type UserCollectionMetrics struct {
	UserID          uint    `json:"user_id"`
	TotalAlbums     int     `json:"total_albums"`
	CollectionValue float64 `json:"collection_value"`
}

// GetUserCollectionMetrics aggregates a user's collection into album count and
// summed average market price. Albums without pricing count as zero value.
// A user with no collection rows yields zeros, not an error.
func (r *CollectionRepository) GetUserCollectionMetrics(userID uint) (*UserCollectionMetrics, error) {
	metrics := UserCollectionMetrics{UserID: userID}
	err := r.db.Model(&models.CollectionItem{}).
		Select("COUNT(*) AS total_albums, COALESCE(SUM(album_stats.avg_price), 0) AS collection_value").
		Joins("LEFT JOIN album_stats ON album_stats.album_id = user_collection.album_id").
		Where("user_collection.user_id = ?", userID).
		Scan(&metrics).Error
	if err != nil {
		return nil, err
	}
	return &metrics, nil
}

// GetCollectionMetricsByUser aggregates album count and summed value for every
// user with at least one collection row. Used by the leaderboard.
func (r *CollectionRepository) GetCollectionMetricsByUser() ([]UserCollectionMetrics, error) {
	var rows []UserCollectionMetrics
	err := r.db.Model(&models.CollectionItem{}).
		Select("user_collection.user_id AS user_id, COUNT(*) AS total_albums, COALESCE(SUM(album_stats.avg_price), 0) AS collection_value").
		Joins("LEFT JOIN album_stats ON album_stats.album_id = user_collection.album_id").
		Group("user_collection.user_id").
		Scan(&rows).Error
	return rows, err
}

// ErrNotInCollection reports gorm's not-found error for callers that want to
// distinguish missing collection rows.
var ErrNotInCollection = gorm.ErrRecordNotFound
