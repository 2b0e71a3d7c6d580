package models

import (
	"time"
)

// UserRanking is the persisted collector rank snapshot, one row per user.
// It is upserted whenever a rank refresh runs; the latest write wins.
type UserRanking struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	User            User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Tier            string    `gorm:"not null;size:50;index" json:"tier"`
	LevelIndex      int       `gorm:"not null" json:"level_index"`
	AlbumLevelIndex int       `gorm:"not null" json:"album_level_index"`
	ValueLevelIndex int       `gorm:"not null" json:"value_level_index"`
	TotalAlbums     int       `gorm:"not null" json:"total_albums"`
	CollectionValue float64   `gorm:"not null;type:decimal(12,2)" json:"collection_value"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name for UserRanking model.
func (UserRanking) TableName() string {
	return "user_rankings"
}

// TierCount is one row of the tier distribution aggregation.
type TierCount struct {
	Tier        string `json:"tier"`
	UsersAtTier int64  `json:"users_at_tier"`
	TotalUsers  int64  `json:"total_users"`
}
