// Package retention removes data past the retention window: soft-deleted
// opportunities, settled conflicts and superseded exchange-rate history.
// Pending conflicts and the newest rate per currency are never purged.
package retention

import (
	"fmt"
	"time"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/repository"
	"github.com/jrkphani/pipeline-pulse-sub004/pkg/logger"
)

const defaultRetentionDays = 90

// Report counts what one purge pass removed.
type Report struct {
	Opportunities int64     `json:"opportunities"`
	Conflicts     int64     `json:"conflicts"`
	Rates         int64     `json:"rates"`
	Cutoff        time.Time `json:"cutoff"`
}

// Purger runs the retention pass.
type Purger struct {
	oppRepo      repository.OpportunityRepository
	conflictRepo repository.ConflictRepository
	rateRepo     repository.ExchangeRateRepository
	log          *logger.Logger
	days         int
}

// NewPurger builds the purger. days defaults to 90 when non-positive.
func NewPurger(
	oppRepo repository.OpportunityRepository,
	conflictRepo repository.ConflictRepository,
	rateRepo repository.ExchangeRateRepository,
	log *logger.Logger,
	days int,
) *Purger {
	if days <= 0 {
		days = defaultRetentionDays
	}
	return &Purger{
		oppRepo:      oppRepo,
		conflictRepo: conflictRepo,
		rateRepo:     rateRepo,
		log:          log,
		days:         days,
	}
}

// Run purges everything older than the retention window and reports counts.
// It stops on the first storage error so a partial pass is visible in logs.
func (p *Purger) Run() (Report, error) {
	cutoff := time.Now().AddDate(0, 0, -p.days)
	report := Report{Cutoff: cutoff}

	var err error
	if report.Opportunities, err = p.oppRepo.PurgeDeletedBefore(cutoff); err != nil {
		return report, fmt.Errorf("purge opportunities: %w", err)
	}
	if report.Conflicts, err = p.conflictRepo.PurgeResolvedBefore(cutoff); err != nil {
		return report, fmt.Errorf("purge conflicts: %w", err)
	}
	if report.Rates, err = p.rateRepo.PurgeOlderThan(cutoff); err != nil {
		return report, fmt.Errorf("purge rate history: %w", err)
	}

	p.log.Info().
		Time("cutoff", cutoff).
		Int64("opportunities", report.Opportunities).
		Int64("conflicts", report.Conflicts).
		Int64("rates", report.Rates).
		Msg("retention purge finished")
	return report, nil
}
