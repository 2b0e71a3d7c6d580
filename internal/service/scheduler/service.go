// Package scheduler provides the nightly ranking backfill job.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bothside-app/bothside-backend/internal/config"
	"github.com/bothside-app/bothside-backend/internal/metrics"
	"github.com/bothside-app/bothside-backend/internal/service/gamification"
	"github.com/bothside-app/bothside-backend/pkg/logger"
)

// UserRepository interface for enumerating users.
type UserRepository interface {
	GetAllIDs() ([]uint, error)
}

// RankRefresher interface for recomputing one user's rank snapshot.
type RankRefresher interface {
	RefreshUserRank(ctx context.Context, userID uint) (*gamification.RankedUser, error)
}

// StatsRefresher interface for refreshing stale album pricing before ranking.
type StatsRefresher interface {
	RefreshStaleStats(ctx context.Context, limit int) (int, error)
}

// Maximum stale albums re-priced per backfill run, to stay inside the
// Discogs request budget.
const statsBatchLimit = 100

// Service runs the periodic ranking backfill.
type Service struct {
	cfg      *config.RankingConfig
	userRepo UserRepository
	ranks    RankRefresher
	stats    StatsRefresher
	log      *logger.Logger
	cron     *cron.Cron
}

// NewService creates a new scheduler service. stats may be nil to skip the
// pricing pass.
func NewService(
	cfg *config.RankingConfig,
	userRepo UserRepository,
	ranks RankRefresher,
	stats StatsRefresher,
	log *logger.Logger,
) *Service {
	return &Service{
		cfg:      cfg,
		userRepo: userRepo,
		ranks:    ranks,
		stats:    stats,
		log:      log,
	}
}

// Start registers and starts the cron job. A missing schedule disables the job.
func (s *Service) Start() error {
	if s.cfg.RefreshSchedule == "" {
		s.log.Info().Msg("Ranking backfill is disabled in configuration")
		return nil
	}

	location, err := time.LoadLocation(s.cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.cfg.Timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(location))

	_, err = s.cron.AddFunc(s.cfg.RefreshSchedule, func() {
		s.RunBackfill(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to register ranking backfill job: %w", err)
	}

	s.cron.Start()

	entries := s.cron.Entries()
	nextRun := ""
	if len(entries) > 0 {
		nextRun = entries[0].Next.Format(time.RFC3339)
	}
	s.log.Info().
		Str("schedule", s.cfg.RefreshSchedule).
		Str("timezone", s.cfg.Timezone).
		Str("next_run", nextRun).
		Msg("Ranking backfill scheduled")

	return nil
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Service) Stop() {
	if s.cron == nil {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Ranking backfill scheduler stopped")
}

// RunBackfill re-prices stale albums, then recomputes and upserts every
// user's rank snapshot. Per-user failures are logged and skipped.
func (s *Service) RunBackfill(ctx context.Context) {
	start := time.Now()

	if s.stats != nil {
		refreshed, err := s.stats.RefreshStaleStats(ctx, statsBatchLimit)
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to refresh stale album stats")
		} else if refreshed > 0 {
			s.log.Info().Int("albums", refreshed).Msg("Refreshed stale album stats")
		}
	}

	userIDs, err := s.userRepo.GetAllIDs()
	if err != nil {
		metrics.BackfillRunsTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Msg("Failed to enumerate users for ranking backfill")
		return
	}

	processed := 0
	failed := 0
	for _, userID := range userIDs {
		if _, err := s.ranks.RefreshUserRank(ctx, userID); err != nil {
			failed++
			s.log.Warn().Err(err).Uint("user_id", userID).Msg("Failed to refresh user rank")
			continue
		}
		processed++
		metrics.BackfillUsersProcessed.Inc()
	}

	status := "success"
	if failed > 0 {
		status = "partial"
	}
	metrics.BackfillRunsTotal.WithLabelValues(status).Inc()

	s.log.Info().
		Int("processed", processed).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Ranking backfill finished")
}
