package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/bothside-app/bothside-backend/internal/discogs"
	"github.com/bothside-app/bothside-backend/internal/models"
	"github.com/bothside-app/bothside-backend/pkg/logger"
)

// Mock dependencies for testing
type mockDiscogsClient struct {
	releases map[int]*discogs.Release
	search   *discogs.SearchResponse
	calls    int
	err      error
}

func newMockDiscogsClient() *mockDiscogsClient {
	return &mockDiscogsClient{releases: make(map[int]*discogs.Release)}
}

func (m *mockDiscogsClient) SearchReleases(ctx context.Context, query string, page int) (*discogs.SearchResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.search, nil
}

func (m *mockDiscogsClient) GetRelease(ctx context.Context, releaseID int) (*discogs.Release, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	release, ok := m.releases[releaseID]
	if !ok {
		return nil, &discogs.APIError{StatusCode: 404, Body: "Release not found."}
	}
	return release, nil
}

type mockAlbumRepository struct {
	albums    map[uint]*models.Album
	nextID    uint
	createErr error
	searchErr error
}

func newMockAlbumRepository() *mockAlbumRepository {
	return &mockAlbumRepository{albums: make(map[uint]*models.Album), nextID: 1}
}

func (m *mockAlbumRepository) Create(album *models.Album) error {
	if m.createErr != nil {
		return m.createErr
	}
	album.ID = m.nextID
	m.nextID++
	m.albums[album.ID] = album
	return nil
}

func (m *mockAlbumRepository) GetByID(id uint) (*models.Album, error) {
	album, ok := m.albums[id]
	if !ok {
		return nil, errors.New("album not found")
	}
	return album, nil
}

func (m *mockAlbumRepository) GetByDiscogsReleaseID(releaseID int) (*models.Album, error) {
	for _, album := range m.albums {
		if album.DiscogsReleaseID != nil && *album.DiscogsReleaseID == releaseID {
			return album, nil
		}
	}
	return nil, nil
}

func (m *mockAlbumRepository) Search(query string, limit int) ([]models.Album, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	var out []models.Album
	for _, album := range m.albums {
		out = append(out, *album)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func setupTestService() (*Service, *mockDiscogsClient, *mockAlbumRepository) {
	client := newMockDiscogsClient()
	albumRepo := newMockAlbumRepository()
	log := logger.New("debug", "text", "stdout")
	service := NewServiceWithInterfaces(client, albumRepo, log)
	return service, client, albumRepo
}

func TestImportReleaseCreatesAlbum(t *testing.T) {
	service, client, albumRepo := setupTestService()
	year := 1959
	client.releases[12345] = &discogs.Release{
		ID:    12345,
		Title: "Kind of Blue",
		Year:  year,
		Artists: []struct {
			Name string `json:"name"`
		}{{Name: "Miles Davis"}},
		Labels: []struct {
			Name string `json:"name"`
		}{{Name: "Columbia"}},
		Thumb: "https://img.discogs.com/kob.jpg",
	}

	album, created, err := service.ImportRelease(context.Background(), 12345)
	if err != nil {
		t.Fatalf("ImportRelease returned error: %v", err)
	}
	if !created {
		t.Error("expected created=true for a new release")
	}
	if album.Title != "Kind of Blue" {
		t.Errorf("Title = %q, want %q", album.Title, "Kind of Blue")
	}
	if album.Artist != "Miles Davis" {
		t.Errorf("Artist = %q, want %q", album.Artist, "Miles Davis")
	}
	if album.Label != "Columbia" {
		t.Errorf("Label = %q, want %q", album.Label, "Columbia")
	}
	if album.Year == nil || *album.Year != year {
		t.Errorf("Year = %v, want %d", album.Year, year)
	}
	if album.DiscogsReleaseID == nil || *album.DiscogsReleaseID != 12345 {
		t.Errorf("DiscogsReleaseID = %v, want 12345", album.DiscogsReleaseID)
	}
	if len(albumRepo.albums) != 1 {
		t.Errorf("expected 1 saved album, got %d", len(albumRepo.albums))
	}
}

func TestImportReleaseIdempotent(t *testing.T) {
	service, client, albumRepo := setupTestService()
	client.releases[777] = &discogs.Release{ID: 777, Title: "Abraxas"}

	first, created, err := service.ImportRelease(context.Background(), 777)
	if err != nil {
		t.Fatalf("first import returned error: %v", err)
	}
	if !created {
		t.Error("expected created=true on first import")
	}

	second, created, err := service.ImportRelease(context.Background(), 777)
	if err != nil {
		t.Fatalf("second import returned error: %v", err)
	}
	if created {
		t.Error("expected created=false on repeat import")
	}
	if second.ID != first.ID {
		t.Errorf("repeat import returned album %d, want %d", second.ID, first.ID)
	}
	if len(albumRepo.albums) != 1 {
		t.Errorf("expected 1 saved album after repeat import, got %d", len(albumRepo.albums))
	}
	// Only the first import should have hit Discogs.
	if client.calls != 1 {
		t.Errorf("discogs calls = %d, want 1", client.calls)
	}
}

func TestImportReleaseNotFound(t *testing.T) {
	service, _, albumRepo := setupTestService()

	_, _, err := service.ImportRelease(context.Background(), 999)
	if err == nil {
		t.Fatal("expected error for unknown release")
	}
	var apiErr *discogs.APIError
	if !errors.As(err, &apiErr) || !apiErr.IsNotFound() {
		t.Errorf("expected a not-found APIError, got %v", err)
	}
	if len(albumRepo.albums) != 0 {
		t.Errorf("expected no saved albums, got %d", len(albumRepo.albums))
	}
}

func TestImportReleaseCreateError(t *testing.T) {
	service, client, albumRepo := setupTestService()
	client.releases[1] = &discogs.Release{ID: 1, Title: "X"}
	albumRepo.createErr = errors.New("database error")

	_, _, err := service.ImportRelease(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error when save fails")
	}
}

func TestSearchDiscogs(t *testing.T) {
	service, client, _ := setupTestService()
	client.search = &discogs.SearchResponse{
		Results: []discogs.SearchResult{
			{ID: 1, Title: "Miles Davis - Kind of Blue"},
			{ID: 2, Title: "Miles Davis - Bitches Brew"},
		},
	}

	resp, err := service.SearchDiscogs(context.Background(), "miles davis", 1)
	if err != nil {
		t.Fatalf("SearchDiscogs returned error: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("expected 2 results, got %d", len(resp.Results))
	}
}

func TestSearchDiscogsError(t *testing.T) {
	service, client, _ := setupTestService()
	client.err = errors.New("discogs unavailable")

	_, err := service.SearchDiscogs(context.Background(), "miles davis", 1)
	if err == nil {
		t.Fatal("expected error when discogs search fails")
	}
}

func TestSearchLocal(t *testing.T) {
	service, _, albumRepo := setupTestService()
	albumRepo.albums[1] = &models.Album{ID: 1, Title: "Kind of Blue", Artist: "Miles Davis"}
	albumRepo.albums[2] = &models.Album{ID: 2, Title: "Blue Train", Artist: "John Coltrane"}

	albums, err := service.SearchLocal(context.Background(), "blue", 0)
	if err != nil {
		t.Fatalf("SearchLocal returned error: %v", err)
	}
	if len(albums) != 2 {
		t.Errorf("expected 2 albums, got %d", len(albums))
	}
}

func TestSearchLocalError(t *testing.T) {
	service, _, albumRepo := setupTestService()
	albumRepo.searchErr = errors.New("database error")

	_, err := service.SearchLocal(context.Background(), "blue", 0)
	if err == nil {
		t.Fatal("expected error when the repository fails")
	}
}

func TestGetAlbum(t *testing.T) {
	service, _, albumRepo := setupTestService()
	albumRepo.albums[4] = &models.Album{ID: 4, Title: "Homogenic", Artist: "Björk"}

	album, err := service.GetAlbum(context.Background(), 4)
	if err != nil {
		t.Fatalf("GetAlbum returned error: %v", err)
	}
	if album.Title != "Homogenic" {
		t.Errorf("Title = %q, want %q", album.Title, "Homogenic")
	}

	if _, err := service.GetAlbum(context.Background(), 99); err == nil {
		t.Error("expected error for unknown album")
	}
}
