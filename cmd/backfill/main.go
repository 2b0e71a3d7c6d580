// Command backfill recomputes every user's collector rank snapshot once and
// exits. Useful after milestone changes or bulk imports.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bothside-app/bothside-backend/internal/cache"
	"github.com/bothside-app/bothside-backend/internal/config"
	"github.com/bothside-app/bothside-backend/internal/discogs"
	"github.com/bothside-app/bothside-backend/internal/repository"
	"github.com/bothside-app/bothside-backend/internal/service/gamification"
	"github.com/bothside-app/bothside-backend/internal/service/pricing"
	"github.com/bothside-app/bothside-backend/internal/service/scheduler"
	"github.com/bothside-app/bothside-backend/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	skipPricing := flag.Bool("skip-pricing", false, "skip the stale pricing refresh pass")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.Get()

	table := gamification.DefaultTierTable()
	if len(cfg.Ranking.AlbumMilestones) > 0 {
		table, err = gamification.NewTierTableFromThresholds(cfg.Ranking.AlbumMilestones, cfg.Ranking.ValueMilestones)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid ranking milestones")
		}
	}

	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	albumRepo := repository.NewAlbumRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)
	rankingRepo := repository.NewRankingRepository(db)

	gamificationService := gamification.NewService(collectionRepo, rankingRepo, table, log)

	var pricingService scheduler.StatsRefresher
	if !*skipPricing {
		redisCache, err := cache.NewRedisCache(&cfg.Database.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisCache.Close()

		discogsClient := discogs.NewClient(&cfg.Discogs, log)
		pricingService = pricing.NewService(
			discogsClient, albumRepo, redisCache,
			time.Duration(cfg.Discogs.StatsTTL)*time.Second, log,
		)
	}

	job := scheduler.NewService(&cfg.Ranking, userRepo, gamificationService, pricingService, log)
	job.RunBackfill(context.Background())
}
