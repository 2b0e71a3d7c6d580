package repository

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bothside-app/bothside-backend/internal/models"
)

// AlbumRepository handles album and album-stats database operations.
type AlbumRepository struct {
	db *DB
}

// NewAlbumRepository creates a new album repository.
func NewAlbumRepository(db *DB) *AlbumRepository {
	return &AlbumRepository{db: db}
}

// Create creates a new album.
func (r *AlbumRepository) Create(album *models.Album) error {
	return r.db.Create(album).Error
}

// GetByID retrieves an album with its stats preloaded.
func (r *AlbumRepository) GetByID(id uint) (*models.Album, error) {
	var album models.Album
	err := r.db.Preload("Stats").First(&album, id).Error
	if err != nil {
		return nil, err
	}
	return &album, nil
}

// GetByDiscogsReleaseID retrieves an album by its Discogs release ID.
// Returns nil without error when no album matches.
func (r *AlbumRepository) GetByDiscogsReleaseID(releaseID int) (*models.Album, error) {
	var album models.Album
	err := r.db.Preload("Stats").Where("discogs_release_id = ?", releaseID).First(&album).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &album, nil
}

// Search finds albums whose title or artist matches the query.
func (r *AlbumRepository) Search(query string, limit int) ([]models.Album, error) {
	var albums []models.Album
	pattern := "%" + strings.ToLower(query) + "%"
	q := r.db.Preload("Stats").
		Where("LOWER(title) LIKE ? OR LOWER(artist) LIKE ?", pattern, pattern).
		Order("artist ASC, title ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&albums).Error
	return albums, err
}

// Update updates an existing album.
func (r *AlbumRepository) Update(album *models.Album) error {
	return r.db.Save(album).Error
}

// UpsertStats writes marketplace stats for an album, one row per album,
// last write wins.
func (r *AlbumRepository) UpsertStats(stats *models.AlbumStats) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "album_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"avg_price", "low_price", "high_price", "currency", "cached_at", "updated_at",
		}),
	}).Create(stats).Error
}

// GetStaleStats retrieves albums whose cached pricing is older than the cutoff,
// including albums never priced at all.
func (r *AlbumRepository) GetStaleStats(cutoff time.Time, limit int) ([]models.Album, error) {
	var albums []models.Album
	q := r.db.Preload("Stats").
		Joins("LEFT JOIN album_stats ON album_stats.album_id = albums.id").
		Where("albums.discogs_release_id IS NOT NULL").
		Where("album_stats.cached_at IS NULL OR album_stats.cached_at < ?", cutoff)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&albums).Error
	return albums, err
}
