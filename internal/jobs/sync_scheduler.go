package jobs

import (
	"context"
	"fmt"
	"time"

	"woosync/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

const syncJobName = "woocommerce-catalog-sync"

// SyncScheduler periodically reconciles every store.
type SyncScheduler struct {
	scheduler   gocron.Scheduler
	syncService services.SyncService
	interval    time.Duration
	log         zerolog.Logger
}

// NewSyncScheduler registers the sync job. The job never overlaps itself; a tick
// that fires while a pass is still running is rescheduled.
func NewSyncScheduler(syncService services.SyncService, interval time.Duration, log zerolog.Logger) (*SyncScheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sync interval must be positive, got %s", interval)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	s := &SyncScheduler{
		scheduler:   scheduler,
		syncService: syncService,
		interval:    interval,
		log:         log.With().Str("component", "scheduler").Logger(),
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.RunOnce, context.Background()),
		gocron.WithName(syncJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync job: %w", err)
	}
	return s, nil
}

func (s *SyncScheduler) Start() {
	s.log.Info().Dur("interval", s.interval).Msg("starting sync scheduler")
	s.scheduler.Start()
}

func (s *SyncScheduler) Stop() error {
	s.log.Info().Msg("stopping sync scheduler")
	return s.scheduler.Shutdown()
}

// RunOnce syncs all stores and logs a summary.
func (s *SyncScheduler) RunOnce(ctx context.Context) error {
	started := time.Now()
	outcomes, err := s.syncService.SyncAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("scheduled sync aborted")
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	s.log.Info().
		Int("stores", len(outcomes)).
		Int("failed", failed).
		Dur("took", time.Since(started)).
		Msg("scheduled sync finished")
	return nil
}
