// Package scheduler wires the recurring jobs: CRM sync passes, rate feed
// refreshes and the retention purge. An empty cron spec disables its job.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/rates"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/retention"
	appsync "github.com/jrkphani/pipeline-pulse-sub004/internal/application/sync"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
	"github.com/jrkphani/pipeline-pulse-sub004/pkg/config"
	"github.com/jrkphani/pipeline-pulse-sub004/pkg/logger"
)

const (
	syncJobTimeout    = 15 * time.Minute
	refreshJobTimeout = 2 * time.Minute
)

// Deps are the use cases the jobs drive.
type Deps struct {
	Sync   *appsync.Coordinator
	Rates  *rates.UseCase
	Purger *retention.Purger
}

// Scheduler owns the cron table.
type Scheduler struct {
	cron *cron.Cron
	log  *logger.Logger
}

// New registers the configured jobs without starting them.
func New(cfg *config.Config, deps Deps, log *logger.Logger) (*Scheduler, error) {
	c := cron.New()

	if spec := cfg.Sync.Schedule; spec != "" {
		if err := c.AddFunc(spec, func() { runSync(deps.Sync, log) }); err != nil {
			return nil, fmt.Errorf("sync schedule %q: %w", spec, err)
		}
		log.Info().Str("schedule", spec).Msg("scheduled sync registered")
	}
	if spec := cfg.Rates.RefreshSchedule; spec != "" {
		if err := c.AddFunc(spec, func() { runRefresh(deps.Rates, log) }); err != nil {
			return nil, fmt.Errorf("rate refresh schedule %q: %w", spec, err)
		}
		log.Info().Str("schedule", spec).Msg("scheduled rate refresh registered")
	}
	if spec := cfg.Retention.PurgeSchedule; spec != "" {
		if err := c.AddFunc(spec, func() { runPurge(deps.Purger, log) }); err != nil {
			return nil, fmt.Errorf("purge schedule %q: %w", spec, err)
		}
		log.Info().Str("schedule", spec).Msg("scheduled retention purge registered")
	}

	return &Scheduler{cron: c, log: log}, nil
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron loop. Jobs already running finish on their own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func runSync(coord *appsync.Coordinator, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), syncJobTimeout)
	defer cancel()

	// RunOnce keeps the tick and its outcome in one place; the coordinator
	// logs the run summary itself.
	_, err := coord.RunOnce(ctx, entity.TriggerScheduled)
	switch {
	case errors.Is(err, domain.ErrRunInProgress):
		log.Warn().Msg("scheduled sync skipped, a pass is already running")
	case err != nil:
		log.Error().Err(err).Msg("scheduled sync failed")
	}
}

func runRefresh(uc *rates.UseCase, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshJobTimeout)
	defer cancel()

	if _, err := uc.Refresh(ctx); err != nil {
		// Cached rates stay in force; the failure is already logged with cause.
		log.Warn().Msg("scheduled rate refresh failed, serving cached rates")
	}
}

func runPurge(p *retention.Purger, log *logger.Logger) {
	if _, err := p.Run(); err != nil {
		log.Error().Err(err).Msg("retention purge failed")
	}
}
