package sync

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/dto"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/conflict"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/currency"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/health"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/repository"
	"github.com/jrkphani/pipeline-pulse-sub004/pkg/keylock"
	"github.com/jrkphani/pipeline-pulse-sub004/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

// Coordinator drives one full CRM sync pass:
//
//	fetch changed records → resolve against local state → normalize amount →
//	re-evaluate health → persist record + pending conflicts in one tx
//
// Records are processed by a bounded worker pool; a per-record failure is
// counted and logged, never aborts the pass. One process runs at most one
// pass at a time; a second start gets domain.ErrRunInProgress.
type Coordinator struct {
	gateway   CRMGateway
	txRunner  TxRunner
	oppRepo   repository.OpportunityRepository
	runRepo   repository.SyncRunRepository
	converter *currency.Converter
	locks     *keylock.Table
	log       *logger.Logger

	workers int
	timeout time.Duration
	running atomic.Bool
}

// NewCoordinator builds the coordinator. workers bounds the record pool and
// defaults to 4 when non-positive.
func NewCoordinator(
	gateway CRMGateway,
	txRunner TxRunner,
	oppRepo repository.OpportunityRepository,
	runRepo repository.SyncRunRepository,
	converter *currency.Converter,
	locks *keylock.Table,
	log *logger.Logger,
	workers int,
) *Coordinator {
	if workers <= 0 {
		workers = 4
	}
	return &Coordinator{
		gateway:   gateway,
		txRunner:  txRunner,
		oppRepo:   oppRepo,
		runRepo:   runRepo,
		converter: converter,
		locks:     locks,
		log:       log,
		workers:   workers,
		timeout:   defaultRunTimeout,
	}
}

// StartRun begins a pass in a background goroutine and returns its
// bookkeeping row immediately, still in running state.
func (c *Coordinator) StartRun(trigger string) (*dto.SyncRunResponse, error) {
	run, since, err := c.begin(trigger)
	if err != nil {
		return nil, err
	}
	resp := dto.NewSyncRunResponse(run)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		c.process(ctx, run, since)
	}()

	return &resp, nil
}

// RunOnce executes a whole pass synchronously and returns the finished run.
// The scheduler uses it so cron ticks observe the outcome they triggered.
func (c *Coordinator) RunOnce(ctx context.Context, trigger string) (*dto.SyncRunResponse, error) {
	run, since, err := c.begin(trigger)
	if err != nil {
		return nil, err
	}
	c.process(ctx, run, since)
	resp := dto.NewSyncRunResponse(run)
	return &resp, nil
}

// GetRun returns one run by id.
func (c *Coordinator) GetRun(id string) (*dto.SyncRunResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	run, err := c.runRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, domain.ErrNotFound
	}
	resp := dto.NewSyncRunResponse(run)
	return &resp, nil
}

// ListRuns returns the most recent runs, newest first.
func (c *Coordinator) ListRuns(limit int) ([]dto.SyncRunResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	runs, err := c.runRepo.ListRecent(limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SyncRunResponse, len(runs))
	for i, r := range runs {
		out[i] = dto.NewSyncRunResponse(r)
	}
	return out, nil
}

// begin claims the single-flight slot, loads the change watermark and
// persists the new run row in running state.
func (c *Coordinator) begin(trigger string) (*entity.SyncRun, time.Time, error) {
	if trigger != entity.TriggerManual && trigger != entity.TriggerScheduled {
		return nil, time.Time{}, domain.ErrInvalidInput
	}
	if !c.running.CompareAndSwap(false, true) {
		return nil, time.Time{}, domain.ErrRunInProgress
	}

	last, err := c.runRepo.LastCompleted()
	if err != nil {
		c.running.Store(false)
		return nil, time.Time{}, fmt.Errorf("load sync watermark: %w", err)
	}
	var since time.Time
	if last != nil {
		since = last.StartedAt
	}

	run := &entity.SyncRun{
		ID:        uuid.New().String(),
		Trigger:   trigger,
		StartedAt: time.Now(),
		Status:    entity.SyncRunRunning,
	}
	if err := c.runRepo.Create(run); err != nil {
		c.running.Store(false)
		return nil, time.Time{}, fmt.Errorf("create sync run: %w", err)
	}
	return run, since, nil
}

// process is the synchronous core of one pass. It always finishes the run row
// and releases the single-flight slot.
func (c *Coordinator) process(ctx context.Context, run *entity.SyncRun, since time.Time) {
	defer c.running.Store(false)

	records, err := c.gateway.FetchChanged(ctx, since)
	if err != nil {
		c.finish(run, fmt.Errorf("fetch changed records: %w", err))
		return
	}
	run.RecordsTotal = len(records)

	var resolved, pending, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, rec := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome, err := c.processRecord(gctx, rec, since)
			if err != nil {
				failed.Add(1)
				c.log.Error().Err(err).
					Str("run_id", run.ID).
					Str("opportunity_id", remoteID(rec)).
					Msg("record failed, pass continues")
				return nil
			}
			resolved.Add(1)
			pending.Add(int64(outcome.pendingConflicts))
			return nil
		})
	}
	waitErr := g.Wait()

	run.RecordsResolved = int(resolved.Load())
	run.ConflictsPending = int(pending.Load())
	run.RecordsFailed = int(failed.Load())
	c.finish(run, waitErr)
}

// recordOutcome is what one record contributed to the run counters.
type recordOutcome struct {
	pendingConflicts int
}

// processRecord handles a single remote record end to end under its per-id
// lock. Errors here count the record as failed without touching the pass.
func (c *Coordinator) processRecord(ctx context.Context, rec RemoteRecord, baseline time.Time) (recordOutcome, error) {
	remote := rec.Opportunity
	if remote == nil || remote.ID == "" {
		return recordOutcome{}, fmt.Errorf("%w: remote record without id", domain.ErrInvalidInput)
	}
	unlock := c.locks.Lock(remote.ID)
	defer unlock()

	local, err := c.oppRepo.GetByID(remote.ID)
	if err != nil {
		return recordOutcome{}, fmt.Errorf("load local record: %w", err)
	}

	now := time.Now()

	// First sight of this opportunity: adopt the CRM copy wholesale.
	if local == nil {
		if remote.Deleted() {
			return recordOutcome{}, nil
		}
		if !remote.LastModifiedRemote.After(rec.ModifiedAt) {
			remote.LastModifiedRemote = rec.ModifiedAt
		}
		c.enrich(remote)
		remote.UpdatedBy = "sync"
		remote.CreatedAt = now
		remote.UpdatedAt = now
		err := c.txRunner.Run(ctx, func(oppRepo repository.OpportunityRepository, _ repository.ConflictRepository) error {
			return oppRepo.Create(remote)
		})
		if err != nil {
			return recordOutcome{}, fmt.Errorf("create record: %w", err)
		}
		return recordOutcome{}, nil
	}

	ft := conflict.FieldTimes{
		Baseline: baseline,
		Local:    make(map[string]time.Time),
		Remote:   rec.FieldTimes,
	}
	// Local edits carry a record-level stamp only, so every field shares it.
	if local.LastModifiedLocal.After(baseline) {
		for _, f := range conflict.FieldNames() {
			ft.Local[f] = local.LastModifiedLocal
		}
	}

	merge, err := conflict.Resolve(local, remote, ft)
	if err != nil {
		return recordOutcome{}, err
	}

	merged := merge.Merged
	if !merged.Deleted() {
		c.enrich(merged)
	}
	merged.UpdatedBy = "sync"
	merged.UpdatedAt = now

	pendingConflicts := merge.Pending()
	err = c.txRunner.Run(ctx, func(oppRepo repository.OpportunityRepository, conflictRepo repository.ConflictRepository) error {
		if err := oppRepo.Update(merged); err != nil {
			return err
		}
		for i := range pendingConflicts {
			pendingConflicts[i].ID = uuid.New().String()
			pendingConflicts[i].DetectedAt = now
			if err := conflictRepo.Create(&pendingConflicts[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return recordOutcome{}, fmt.Errorf("persist merge: %w", err)
	}
	return recordOutcome{pendingConflicts: len(pendingConflicts)}, nil
}

// enrich recomputes the derived fields: normalized amount first, then the
// health classification. A record that fails validation is marked
// needs_update and left otherwise untouched pending correction.
func (c *Coordinator) enrich(o *entity.Opportunity) {
	today := time.Now()

	conv := c.converter.Convert(o.AmountLocal, o.LocalCurrency, today)
	o.AmountBase = conv.Amount
	o.ConversionSource = conv.Source
	o.RateUsed = conv.RateUsed
	o.RateWarning = conv.Warning

	res, err := health.Evaluate(health.Input{
		Timeline:           &o.Milestones,
		Phase:              o.Phase,
		Probability:        o.Probability,
		LastModifiedLocal:  o.LastModifiedLocal,
		LastModifiedRemote: o.LastModifiedRemote,
		Today:              today,
	})
	if err != nil {
		o.HealthSignal = entity.SignalNeedsUpdate
		o.HealthReason = needsUpdateReason(err)
		o.RequiresAttention = false
		return
	}
	o.Phase = res.Phase
	o.HealthSignal = res.Signal
	o.HealthReason = res.Reason
	o.RequiresAttention = res.RequiresAttention
}

// finish stamps the terminal state on the run row and persists it.
func (c *Coordinator) finish(run *entity.SyncRun, cause error) {
	finished := time.Now()
	run.FinishedAt = &finished
	if cause != nil {
		run.Status = entity.SyncRunFailed
		run.Error = cause.Error()
	} else {
		run.Status = entity.SyncRunCompleted
	}
	if err := c.runRepo.Update(run); err != nil {
		c.log.Error().Err(err).Str("run_id", run.ID).Msg("could not persist sync run state")
	}

	evt := c.log.Info()
	if cause != nil {
		evt = c.log.Error().Err(cause)
	}
	evt.Str("run_id", run.ID).
		Str("trigger", run.Trigger).
		Int("total", run.RecordsTotal).
		Int("resolved", run.RecordsResolved).
		Int("conflicts_pending", run.ConflictsPending).
		Int("failed", run.RecordsFailed).
		Msg("sync run finished")
}

func needsUpdateReason(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", "; ")
}

func remoteID(rec RemoteRecord) string {
	if rec.Opportunity == nil {
		return ""
	}
	return rec.Opportunity.ID
}
