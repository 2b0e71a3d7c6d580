package models

import (
	"time"
)

// CollectionItem represents one album in a user's collection.
type CollectionItem struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	UserID  uint  `gorm:"not null;index;uniqueIndex:idx_collection_user_album" json:"user_id"`
	User    User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AlbumID uint  `gorm:"not null;index;uniqueIndex:idx_collection_user_album" json:"album_id"`
	Album   Album `gorm:"foreignKey:AlbumID" json:"album,omitempty"`
	// IsGem marks albums the user highlights as the jewels of their collection.
	IsGem     bool      `gorm:"default:false" json:"is_gem"`
	AddedAt   time.Time `gorm:"not null" json:"added_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for CollectionItem model.
func (CollectionItem) TableName() string {
	return "user_collection"
}
