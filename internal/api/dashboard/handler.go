// Package dashboard provides REST API handlers for collector ranks,
// tier statistics and the leaderboard.
package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bothside-app/bothside-backend/internal/models"
	"github.com/bothside-app/bothside-backend/internal/service/gamification"
	"github.com/bothside-app/bothside-backend/internal/service/leaderboard"
	"github.com/bothside-app/bothside-backend/pkg/logger"
)

// GamificationService interface for rank operations.
type GamificationService interface {
	GetRankForUser(ctx context.Context, userID uint) (*gamification.RankedUser, error)
	RefreshUserRank(ctx context.Context, userID uint) (*gamification.RankedUser, error)
	GetPersistedRank(ctx context.Context, userID uint) (*models.UserRanking, error)
	GetTierDistribution(ctx context.Context) ([]models.TierCount, error)
	GetUserTierShare(ctx context.Context, userID uint) (*gamification.TierShare, error)
}

// LeaderboardService interface for leaderboard operations.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, limit int) ([]leaderboard.Entry, error)
	GetUserPosition(ctx context.Context, userID uint) (int, error)
}

// Handler handles dashboard API requests.
type Handler struct {
	gamificationService GamificationService
	leaderboardService  LeaderboardService
	log                 *logger.Logger
}

// NewHandler creates a new dashboard handler.
func NewHandler(gamificationService GamificationService, leaderboardService LeaderboardService, log *logger.Logger) *Handler {
	return &Handler{
		gamificationService: gamificationService,
		leaderboardService:  leaderboardService,
		log:                 log,
	}
}

// GetUserRank returns the rank computed live from the user's collection.
// GET /api/v1/users/:id/rank.
func (h *Handler) GetUserRank(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ranked, err := h.gamificationService.GetRankForUser(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to compute rank")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to compute rank")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":      userID,
		"summary":      ranked.Summary,
		"rank":         ranked.Rank,
		"generated_at": time.Now().UTC(),
	})
}

// RefreshUserRank recomputes the rank and upserts the snapshot row.
// POST /api/v1/users/:id/rank/refresh.
func (h *Handler) RefreshUserRank(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ranked, err := h.gamificationService.RefreshUserRank(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to refresh rank")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to refresh rank")
		return
	}

	h.log.Info().
		Uint("user_id", userID).
		Str("tier", ranked.Rank.Tier).
		Msg("Refreshed user rank")

	c.JSON(http.StatusOK, gin.H{
		"user_id":      userID,
		"summary":      ranked.Summary,
		"rank":         ranked.Rank,
		"generated_at": time.Now().UTC(),
	})
}

// GetUserRankSnapshot returns the persisted snapshot, 404 when the user was
// never ranked.
// GET /api/v1/users/:id/rank/snapshot.
func (h *Handler) GetUserRankSnapshot(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.gamificationService.GetPersistedRank(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get rank snapshot")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to get rank snapshot")
		return
	}
	if snapshot == nil {
		h.errorResponse(c, http.StatusNotFound, "No ranking snapshot for user")
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetUserTierShare returns the fraction of ranked users at the user's tier.
// Responds 404 when no ranking data exists; an empty collection is not an
// error, but an unranked user has no share.
// GET /api/v1/users/:id/rank/share.
func (h *Handler) GetUserTierShare(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	share, err := h.gamificationService.GetUserTierShare(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get tier share")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to get tier share")
		return
	}
	if share == nil {
		h.errorResponse(c, http.StatusNotFound, "No ranking data for user")
		return
	}

	c.JSON(http.StatusOK, share)
}

// GetTierDistribution returns user counts per tier.
// GET /api/v1/rankings/distribution.
func (h *Handler) GetTierDistribution(c *gin.Context) {
	counts, err := h.gamificationService.GetTierDistribution(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get tier distribution")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to get tier distribution")
		return
	}

	var total int64
	if len(counts) > 0 {
		total = counts[0].TotalUsers
	}

	c.JSON(http.StatusOK, gin.H{
		"distribution": counts,
		"total_users":  total,
		"generated_at": time.Now().UTC(),
	})
}

// GetLeaderboard returns collectors ordered by collection value.
// GET /api/v1/leaderboard?limit=10.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit, err := h.parseLimit(c, 10)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.leaderboardService.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve leaderboard")
		return
	}

	h.log.Info().
		Int("limit", limit).
		Int("entries", len(entries)).
		Msg("Retrieved leaderboard")

	c.JSON(http.StatusOK, gin.H{
		"leaderboard":   entries,
		"total_entries": len(entries),
		"generated_at":  time.Now().UTC(),
	})
}

// GetUserPosition returns the user's leaderboard position.
// GET /api/v1/users/:id/position.
func (h *Handler) GetUserPosition(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	position, err := h.leaderboardService.GetUserPosition(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get position")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to get position")
		return
	}
	if position == 0 {
		h.errorResponse(c, http.StatusNotFound, "User not on leaderboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "position": position})
}

func (h *Handler) parseUserID(c *gin.Context) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid user id: %q", raw)
	}
	return uint(id), nil
}

func (h *Handler) parseLimit(c *gin.Context, defaultLimit int) (int, error) {
	raw := c.DefaultQuery("limit", strconv.Itoa(defaultLimit))
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("invalid limit: %q", raw)
	}
	return limit, nil
}

func (h *Handler) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
