// Package api assembles the HTTP router for the service.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	catalogapi "github.com/bothside-app/bothside-backend/internal/api/catalog"
	collectionapi "github.com/bothside-app/bothside-backend/internal/api/collection"
	"github.com/bothside-app/bothside-backend/internal/api/dashboard"
	"github.com/bothside-app/bothside-backend/internal/config"
	"github.com/bothside-app/bothside-backend/internal/repository"
)

// NewRouter builds the gin engine with all API routes registered.
func NewRouter(
	cfg *config.ServerConfig,
	db *repository.DB,
	dashboardHandler *dashboard.Handler,
	collectionHandler *collectionapi.Handler,
	catalogHandler *catalogapi.Handler,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/leaderboard", dashboardHandler.GetLeaderboard)
		v1.GET("/rankings/distribution", dashboardHandler.GetTierDistribution)

		albums := v1.Group("/albums")
		{
			albums.GET("", catalogHandler.ListAlbums)
			albums.POST("", catalogHandler.ImportRelease)
			albums.GET("/search", catalogHandler.SearchDiscogs)
			albums.GET("/:albumId", catalogHandler.GetAlbum)
		}

		users := v1.Group("/users/:id")
		{
			users.GET("/rank", dashboardHandler.GetUserRank)
			users.POST("/rank/refresh", dashboardHandler.RefreshUserRank)
			users.GET("/rank/snapshot", dashboardHandler.GetUserRankSnapshot)
			users.GET("/rank/share", dashboardHandler.GetUserTierShare)
			users.GET("/position", dashboardHandler.GetUserPosition)

			users.GET("/collection", collectionHandler.GetCollection)
			users.POST("/collection", collectionHandler.AddAlbum)
			users.GET("/collection/:albumId", collectionHandler.HasAlbum)
			users.DELETE("/collection/:albumId", collectionHandler.RemoveAlbum)
			users.POST("/collection/:albumId/gem", collectionHandler.ToggleGem)
			users.GET("/gems", collectionHandler.GetGems)
		}
	}

	return router
}
