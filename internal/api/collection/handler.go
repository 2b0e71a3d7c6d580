// Package collection provides REST API handlers for collection management.
package collection

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bothside-app/bothside-backend/internal/models"
	"github.com/bothside-app/bothside-backend/pkg/logger"
)

// Service interface for collection operations.
type Service interface {
	AddAlbum(ctx context.Context, userID, albumID uint, isGem bool) error
	RemoveAlbum(ctx context.Context, userID, albumID uint) error
	GetCollection(ctx context.Context, userID uint) ([]models.CollectionItem, error)
	GetGems(ctx context.Context, userID uint) ([]models.CollectionItem, error)
	HasAlbum(ctx context.Context, userID, albumID uint) (bool, error)
	ToggleGem(ctx context.Context, userID, albumID uint) (bool, error)
}

// Handler handles collection API requests.
type Handler struct {
	service Service
	log     *logger.Logger
}

// NewHandler creates a new collection handler.
func NewHandler(service Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

type addAlbumRequest struct {
	AlbumID uint `json:"album_id" binding:"required"`
	IsGem   bool `json:"is_gem"`
}

// GetCollection lists a user's collection, newest first.
// GET /api/v1/users/:id/collection.
func (h *Handler) GetCollection(c *gin.Context) {
	userID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.service.GetCollection(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get collection")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve collection")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":     userID,
		"collection":  items,
		"total_items": len(items),
	})
}

// AddAlbum puts an album into a user's collection.
// POST /api/v1/users/:id/collection.
func (h *Handler) AddAlbum(c *gin.Context) {
	userID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req addAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "album_id is required")
		return
	}

	if err := h.service.AddAlbum(c.Request.Context(), userID, req.AlbumID, req.IsGem); err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Uint("album_id", req.AlbumID).Msg("Failed to add album")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to add album to collection")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_id":  userID,
		"album_id": req.AlbumID,
		"is_gem":   req.IsGem,
	})
}

// RemoveAlbum deletes an album from a user's collection.
// DELETE /api/v1/users/:id/collection/:albumId.
func (h *Handler) RemoveAlbum(c *gin.Context) {
	userID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	albumID, err := h.parseID(c, "albumId")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.RemoveAlbum(c.Request.Context(), userID, albumID); err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Uint("album_id", albumID).Msg("Failed to remove album")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to remove album from collection")
		return
	}

	c.Status(http.StatusNoContent)
}

// HasAlbum checks collection membership.
// GET /api/v1/users/:id/collection/:albumId.
func (h *Handler) HasAlbum(c *gin.Context) {
	userID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	albumID, err := h.parseID(c, "albumId")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	owned, err := h.service.HasAlbum(c.Request.Context(), userID, albumID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Uint("album_id", albumID).Msg("Failed to check membership")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to check collection")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":       userID,
		"album_id":      albumID,
		"in_collection": owned,
	})
}

// ToggleGem flips the gem flag on an owned album.
// POST /api/v1/users/:id/collection/:albumId/gem.
func (h *Handler) ToggleGem(c *gin.Context) {
	userID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	albumID, err := h.parseID(c, "albumId")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	isGem, err := h.service.ToggleGem(c.Request.Context(), userID, albumID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Uint("album_id", albumID).Msg("Failed to toggle gem")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to toggle gem")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":  userID,
		"album_id": albumID,
		"is_gem":   isGem,
	})
}

// GetGems lists a user's gem-flagged albums.
// GET /api/v1/users/:id/gems.
func (h *Handler) GetGems(c *gin.Context) {
	userID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.service.GetGems(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get gems")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve gems")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":     userID,
		"gems":        items,
		"total_items": len(items),
	})
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
