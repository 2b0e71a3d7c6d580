// Package catalog provides album intake: Discogs search and release import
// into the local album table.
package catalog

import (
	"context"
	"fmt"

	"github.com/bothside-app/bothside-backend/internal/discogs"
	"github.com/bothside-app/bothside-backend/internal/models"
	"github.com/bothside-app/bothside-backend/internal/repository"
	"github.com/bothside-app/bothside-backend/pkg/logger"
)

// DiscogsClient interface for catalog lookups against Discogs.
type DiscogsClient interface {
	SearchReleases(ctx context.Context, query string, page int) (*discogs.SearchResponse, error)
	GetRelease(ctx context.Context, releaseID int) (*discogs.Release, error)
}

// AlbumRepository interface for album catalog operations.
type AlbumRepository interface {
	Create(album *models.Album) error
	GetByID(id uint) (*models.Album, error)
	GetByDiscogsReleaseID(releaseID int) (*models.Album, error)
	Search(query string, limit int) ([]models.Album, error)
}

// Service exposes the album catalog: local search over saved albums and
// import of Discogs releases into the catalog.
type Service struct {
	discogsClient DiscogsClient
	albumRepo     AlbumRepository
	log           *logger.Logger
}

// NewService creates a new catalog service with concrete dependency types.
func NewService(
	discogsClient *discogs.Client,
	albumRepo *repository.AlbumRepository,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(discogsClient, albumRepo, log)
}

// NewServiceWithInterfaces creates a new catalog service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	discogsClient DiscogsClient,
	albumRepo AlbumRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		discogsClient: discogsClient,
		albumRepo:     albumRepo,
		log:           log,
	}
}

// SearchLocal finds albums already saved in the catalog by title or artist.
//
//nolint:revive,unparam // ctx reserved for future context-aware operations
func (s *Service) SearchLocal(ctx context.Context, query string, limit int) ([]models.Album, error) {
	albums, err := s.albumRepo.Search(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}
	return albums, nil
}

// SearchDiscogs queries the Discogs database for releases matching the query.
func (s *Service) SearchDiscogs(ctx context.Context, query string, page int) (*discogs.SearchResponse, error) {
	resp, err := s.discogsClient.SearchReleases(ctx, query, page)
	if err != nil {
		return nil, fmt.Errorf("discogs search failed: %w", err)
	}
	return resp, nil
}

// GetAlbum retrieves a saved album with its pricing stats.
//
//nolint:revive,unparam // ctx reserved for future context-aware operations
func (s *Service) GetAlbum(ctx context.Context, id uint) (*models.Album, error) {
	album, err := s.albumRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get album: %w", err)
	}
	return album, nil
}

// ImportRelease saves a Discogs release as a catalog album. Importing a
// release that was already saved returns the existing album; created reports
// whether a new row was written.
func (s *Service) ImportRelease(ctx context.Context, releaseID int) (*models.Album, bool, error) {
	existing, err := s.albumRepo.GetByDiscogsReleaseID(releaseID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check for existing album: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	release, err := s.discogsClient.GetRelease(ctx, releaseID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch release %d: %w", releaseID, err)
	}

	album := albumFromRelease(release)
	if err := s.albumRepo.Create(album); err != nil {
		return nil, false, fmt.Errorf("failed to save album: %w", err)
	}

	s.log.Info().
		Int("release_id", releaseID).
		Uint("album_id", album.ID).
		Str("title", album.Title).
		Msg("Release imported into catalog")
	return album, true, nil
}

func albumFromRelease(release *discogs.Release) *models.Album {
	album := &models.Album{
		Title:            release.Title,
		CoverURL:         release.Thumb,
		DiscogsReleaseID: &release.ID,
	}
	if release.Year > 0 {
		year := release.Year
		album.Year = &year
	}
	if len(release.Artists) > 0 {
		album.Artist = release.Artists[0].Name
	}
	if len(release.Labels) > 0 {
		album.Label = release.Labels[0].Name
	}
	return album
}
