// Package catalog provides REST API handlers for the album catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bothside-app/bothside-backend/internal/discogs"
	"github.com/bothside-app/bothside-backend/internal/models"
	"github.com/bothside-app/bothside-backend/pkg/logger"
)

// Service interface for catalog operations.
type Service interface {
	SearchLocal(ctx context.Context, query string, limit int) ([]models.Album, error)
	SearchDiscogs(ctx context.Context, query string, page int) (*discogs.SearchResponse, error)
	GetAlbum(ctx context.Context, id uint) (*models.Album, error)
	ImportRelease(ctx context.Context, releaseID int) (*models.Album, bool, error)
}

// Handler handles catalog API requests.
type Handler struct {
	service Service
	log     *logger.Logger
}

// NewHandler creates a new catalog handler.
func NewHandler(service Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

type importReleaseRequest struct {
	DiscogsReleaseID int `json:"discogs_release_id" binding:"required"`
}

// ListAlbums searches albums already saved in the catalog.
// GET /api/v1/albums?q=&limit=.
func (h *Handler) ListAlbums(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.errorResponse(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	albums, err := h.service.SearchLocal(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to search catalog")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to search catalog")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"albums":      albums,
		"total_items": len(albums),
	})
}

// SearchDiscogs searches the Discogs database for releases.
// GET /api/v1/albums/search?q=&page=.
func (h *Handler) SearchDiscogs(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		h.errorResponse(c, http.StatusBadRequest, "q is required")
		return
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.errorResponse(c, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = parsed
	}

	resp, err := h.service.SearchDiscogs(c.Request.Context(), query, page)
	if err != nil {
		h.log.Error().Err(err).Str("query", query).Msg("Discogs search failed")
		h.errorResponse(c, http.StatusBadGateway, "Discogs search failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pagination": resp.Pagination,
		"results":    resp.Results,
	})
}

// GetAlbum retrieves a saved album with its pricing stats.
// GET /api/v1/albums/:albumId.
func (h *Handler) GetAlbum(c *gin.Context) {
	albumID, err := h.parseID(c, "albumId")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	album, err := h.service.GetAlbum(c.Request.Context(), albumID)
	if err != nil {
		h.errorResponse(c, http.StatusNotFound, "Album not found")
		return
	}

	c.JSON(http.StatusOK, album)
}

// ImportRelease saves a Discogs release as a catalog album. Returns 201 when
// a new album is created, 200 when the release was already saved.
// POST /api/v1/albums.
func (h *Handler) ImportRelease(c *gin.Context) {
	var req importReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "discogs_release_id is required")
		return
	}

	album, created, err := h.service.ImportRelease(c.Request.Context(), req.DiscogsReleaseID)
	if err != nil {
		var apiErr *discogs.APIError
		if errors.As(err, &apiErr) && apiErr.IsNotFound() {
			h.errorResponse(c, http.StatusNotFound, "Release not found on Discogs")
			return
		}
		h.log.Error().Err(err).Int("release_id", req.DiscogsReleaseID).Msg("Failed to import release")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to import release")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, album)
}

func (h *Handler) parseID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return uint(id), nil
}

func (h *Handler) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
