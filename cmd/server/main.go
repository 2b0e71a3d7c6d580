package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bothside-app/bothside-backend/internal/api"
	catalogapi "github.com/bothside-app/bothside-backend/internal/api/catalog"
	collectionapi "github.com/bothside-app/bothside-backend/internal/api/collection"
	"github.com/bothside-app/bothside-backend/internal/api/dashboard"
	"github.com/bothside-app/bothside-backend/internal/cache"
	"github.com/bothside-app/bothside-backend/internal/config"
	"github.com/bothside-app/bothside-backend/internal/discogs"
	"github.com/bothside-app/bothside-backend/internal/repository"
	"github.com/bothside-app/bothside-backend/internal/service/catalog"
	"github.com/bothside-app/bothside-backend/internal/service/collection"
	"github.com/bothside-app/bothside-backend/internal/service/gamification"
	"github.com/bothside-app/bothside-backend/internal/service/leaderboard"
	"github.com/bothside-app/bothside-backend/internal/service/pricing"
	"github.com/bothside-app/bothside-backend/internal/service/scheduler"
	"github.com/bothside-app/bothside-backend/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.Get()

	// Tier table: config overrides or built-in defaults. A malformed table is
	// a startup error, never a per-request one.
	table := gamification.DefaultTierTable()
	if len(cfg.Ranking.AlbumMilestones) > 0 {
		table, err = gamification.NewTierTableFromThresholds(cfg.Ranking.AlbumMilestones, cfg.Ranking.ValueMilestones)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid ranking milestones")
		}
	}

	if err := repository.Migrate(&cfg.Database.Postgres, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to auto-migrate models")
	}

	redisCache, err := cache.NewRedisCache(&cfg.Database.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisCache.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	albumRepo := repository.NewAlbumRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)
	rankingRepo := repository.NewRankingRepository(db)

	// External clients
	discogsClient := discogs.NewClient(&cfg.Discogs, log)

	// Services
	gamificationService := gamification.NewService(collectionRepo, rankingRepo, table, log)
	leaderboardService := leaderboard.NewService(collectionRepo, userRepo, table, log)
	collectionService := collection.NewService(collectionRepo, albumRepo, log)
	catalogService := catalog.NewService(discogsClient, albumRepo, log)
	pricingService := pricing.NewService(
		discogsClient, albumRepo, redisCache,
		time.Duration(cfg.Discogs.StatsTTL)*time.Second, log,
	)

	backfill := scheduler.NewService(&cfg.Ranking, userRepo, gamificationService, pricingService, log)
	if err := backfill.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start ranking backfill scheduler")
	}
	defer backfill.Stop()

	// Handlers and router
	dashboardHandler := dashboard.NewHandler(gamificationService, leaderboardService, log)
	collectionHandler := collectionapi.NewHandler(collectionService, log)
	catalogHandler := catalogapi.NewHandler(catalogService, log)
	router := api.NewRouter(&cfg.Server, db, dashboardHandler, collectionHandler, catalogHandler)

	// Prometheus exporter on its own port
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info().Int("port", cfg.Metrics.Port).Str("path", cfg.Metrics.Path).Msg("Metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("environment", cfg.Server.Environment).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Metrics server shutdown failed")
		}
	}
}
