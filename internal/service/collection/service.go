// Package collection provides the user collection management service.
package collection

import (
	"context"
	"fmt"

	"github.com/bothside-app/bothside-backend/internal/metrics"
	"github.com/bothside-app/bothside-backend/internal/models"
	"github.com/bothside-app/bothside-backend/internal/repository"
	"github.com/bothside-app/bothside-backend/pkg/logger"
)

// CollectionRepository interface for collection operations.
type CollectionRepository interface {
	Add(userID, albumID uint, isGem bool) error
	Remove(userID, albumID uint) error
	GetUserCollection(userID uint) ([]models.CollectionItem, error)
	GetUserGems(userID uint) ([]models.CollectionItem, error)
	IsInCollection(userID, albumID uint) (bool, error)
	ToggleGem(userID, albumID uint) (bool, error)
}

// AlbumRepository interface for album lookups.
type AlbumRepository interface {
	GetByID(id uint) (*models.Album, error)
}

// Service manages a user's vinyl collection.
type Service struct {
	collectionRepo CollectionRepository
	albumRepo      AlbumRepository
	log            *logger.Logger
}

// NewService creates a new collection service with concrete repository types.
func NewService(
	collectionRepo *repository.CollectionRepository,
	albumRepo *repository.AlbumRepository,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(collectionRepo, albumRepo, log)
}

// NewServiceWithInterfaces creates a new collection service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	collectionRepo CollectionRepository,
	albumRepo AlbumRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		collectionRepo: collectionRepo,
		albumRepo:      albumRepo,
		log:            log,
	}
}

// AddAlbum puts an album into the user's collection. Adding an album the user
// already owns is a no-op, not an error.
//
//nolint:revive,unparam // ctx reserved for future context-aware operations
func (s *Service) AddAlbum(ctx context.Context, userID, albumID uint, isGem bool) error {
	if _, err := s.albumRepo.GetByID(albumID); err != nil {
		metrics.CollectionMutationsTotal.WithLabelValues("add", "error").Inc()
		return fmt.Errorf("album %d not found: %w", albumID, err)
	}

	if err := s.collectionRepo.Add(userID, albumID, isGem); err != nil {
		metrics.CollectionMutationsTotal.WithLabelValues("add", "error").Inc()
		return fmt.Errorf("failed to add album to collection: %w", err)
	}

	metrics.CollectionMutationsTotal.WithLabelValues("add", "success").Inc()
	s.log.Info().
		Uint("user_id", userID).
		Uint("album_id", albumID).
		Bool("is_gem", isGem).
		Msg("Album added to collection")
	return nil
}

// RemoveAlbum takes an album out of the user's collection.
//
//nolint:revive,unparam // ctx reserved for future context-aware operations
func (s *Service) RemoveAlbum(ctx context.Context, userID, albumID uint) error {
	if err := s.collectionRepo.Remove(userID, albumID); err != nil {
		metrics.CollectionMutationsTotal.WithLabelValues("remove", "error").Inc()
		return fmt.Errorf("failed to remove album from collection: %w", err)
	}

	metrics.CollectionMutationsTotal.WithLabelValues("remove", "success").Inc()
	s.log.Info().
		Uint("user_id", userID).
		Uint("album_id", albumID).
		Msg("Album removed from collection")
	return nil
}

// GetCollection lists the user's collection, newest first.
//
//nolint:revive,unparam // ctx reserved for future context-aware operations
func (s *Service) GetCollection(ctx context.Context, userID uint) ([]models.CollectionItem, error) {
	items, err := s.collectionRepo.GetUserCollection(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	return items, nil
}

// GetGems lists the user's gem-flagged albums.
//
//nolint:revive,unparam // ctx reserved for future context-aware operations
func (s *Service) GetGems(ctx context.Context, userID uint) ([]models.CollectionItem, error) {
	items, err := s.collectionRepo.GetUserGems(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get gems: %w", err)
	}
	return items, nil
}

// HasAlbum checks whether an album is in the user's collection.
//
//nolint:revive,unparam // ctx reserved for future context-aware operations
func (s *Service) HasAlbum(ctx context.Context, userID, albumID uint) (bool, error) {
	owned, err := s.collectionRepo.IsInCollection(userID, albumID)
	if err != nil {
		return false, fmt.Errorf("failed to check collection membership: %w", err)
	}
	return owned, nil
}

// ToggleGem flips the gem flag on an owned album and returns the new state.
//
//nolint:revive,unparam // ctx reserved for future context-aware operations
func (s *Service) ToggleGem(ctx context.Context, userID, albumID uint) (bool, error) {
	isGem, err := s.collectionRepo.ToggleGem(userID, albumID)
	if err != nil {
		metrics.CollectionMutationsTotal.WithLabelValues("toggle_gem", "error").Inc()
		return false, fmt.Errorf("failed to toggle gem: %w", err)
	}

	metrics.CollectionMutationsTotal.WithLabelValues("toggle_gem", "success").Inc()
	return isGem, nil
}
