package models

import (
	"time"
)

// Album represents a vinyl release known to the catalog.
type Album struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	Title            string      `gorm:"not null;type:text" json:"title"`
	Artist           string      `gorm:"not null;size:255;index" json:"artist"`
	Year             *int        `json:"year"`
	Label            string      `gorm:"size:255" json:"label"`
	CoverURL         string      `gorm:"type:text" json:"cover_url"`
	DiscogsReleaseID *int        `gorm:"column:discogs_release_id;uniqueIndex" json:"discogs_release_id"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
	Stats            *AlbumStats `gorm:"foreignKey:AlbumID" json:"stats,omitempty"`
}

// TableName specifies the table name for Album model.
func (Album) TableName() string {
	return "albums"
}

// AlbumStats holds marketplace pricing for an album, cached from Discogs.
type AlbumStats struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	AlbumID   uint       `gorm:"not null;uniqueIndex" json:"album_id"`
	AvgPrice  *float64   `gorm:"type:decimal(10,2)" json:"avg_price"`
	LowPrice  *float64   `gorm:"type:decimal(10,2)" json:"low_price"`
	HighPrice *float64   `gorm:"type:decimal(10,2)" json:"high_price"`
	Currency  string     `gorm:"size:10" json:"currency"`
	CachedAt  *time.Time `json:"cached_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName specifies the table name for AlbumStats model.
func (AlbumStats) TableName() string {
	return "album_stats"
}

// IsStale reports whether the cached pricing is older than ttl. Stats that were
// never fetched are always stale.
func (s *AlbumStats) IsStale(ttl time.Duration) bool {
	if s.CachedAt == nil {
		return true
	}
	return time.Since(*s.CachedAt) > ttl
}
