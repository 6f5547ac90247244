// Package review serves the manual conflict queue: listing what the sync
// pass could not auto-resolve and applying reviewer decisions.
package review

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/dto"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/currency"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/health"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/repository"
	"github.com/jrkphani/pipeline-pulse-sub004/pkg/keylock"
	"github.com/jrkphani/pipeline-pulse-sub004/pkg/logger"
)

const dateLayout = "2006-01-02"

// UseCase applies reviewer decisions to pending conflicts.
type UseCase struct {
	conflictRepo repository.ConflictRepository
	oppRepo      repository.OpportunityRepository
	txRunner     TxRunner
	converter    *currency.Converter
	locks        *keylock.Table
	log          *logger.Logger
}

// NewUseCase builds the use case. locks must be the same table the sync
// coordinator uses, so decisions and sync workers never write one
// opportunity concurrently.
func NewUseCase(
	conflictRepo repository.ConflictRepository,
	oppRepo repository.OpportunityRepository,
	txRunner TxRunner,
	converter *currency.Converter,
	locks *keylock.Table,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		conflictRepo: conflictRepo,
		oppRepo:      oppRepo,
		txRunner:     txRunner,
		converter:    converter,
		locks:        locks,
		log:          log,
	}
}

// ListPending returns a page of conflicts waiting for a decision, oldest
// first so the backlog drains in detection order.
func (uc *UseCase) ListPending(limit, offset int) ([]dto.ConflictResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	pending, err := uc.conflictRepo.ListPending(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ConflictResponse, len(pending))
	for i, c := range pending {
		out[i] = dto.NewConflictResponse(c)
	}
	return out, nil
}

// Decide settles one pending conflict. keep_local confirms the current local
// value; accept_remote writes the CRM value into the record. Either way the
// opportunity is re-evaluated and both rows are persisted in one transaction.
// Accepting a phase regression without a note is rejected with
// domain.ErrReasonRequired.
func (uc *UseCase) Decide(ctx context.Context, conflictID string, req dto.ConflictDecisionRequest) (*dto.ConflictDecisionResponse, error) {
	if conflictID == "" || req.DecidedBy == "" {
		return nil, fmt.Errorf("%w: conflict id and decided_by are required", domain.ErrInvalidInput)
	}
	if req.Decision != entity.DecisionKeepLocal && req.Decision != entity.DecisionAcceptRemote {
		return nil, fmt.Errorf("%w: unknown decision %q", domain.ErrInvalidInput, req.Decision)
	}

	rec, err := uc.conflictRepo.GetByID(conflictID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	if !rec.Pending() {
		return nil, fmt.Errorf("%w: conflict already settled as %s", domain.ErrConflict, rec.Resolution)
	}

	unlock := uc.locks.Lock(rec.OpportunityID)
	defer unlock()

	opp, err := uc.oppRepo.GetByID(rec.OpportunityID)
	if err != nil {
		return nil, err
	}
	if opp == nil {
		return nil, fmt.Errorf("%w: opportunity %s", domain.ErrNotFound, rec.OpportunityID)
	}

	var override *health.PhaseOverride
	if req.Decision == entity.DecisionAcceptRemote {
		override, err = uc.acceptRemote(opp, rec, req.Note)
		if err != nil {
			return nil, err
		}
		rec.Resolution = entity.ResolutionCRMWins
	} else {
		rec.Resolution = entity.ResolutionLocalWins
	}

	now := time.Now()
	resolvedAt := now
	rec.ResolvedAt = &resolvedAt
	rec.ResolvedBy = req.DecidedBy
	rec.ResolutionNote = req.Note

	uc.evaluate(opp, override, now)
	opp.UpdatedBy = req.DecidedBy
	opp.UpdatedAt = now

	err = uc.txRunner.Run(ctx, func(oppRepo repository.OpportunityRepository, conflictRepo repository.ConflictRepository) error {
		if err := oppRepo.Update(opp); err != nil {
			return err
		}
		return conflictRepo.Update(rec)
	})
	if err != nil {
		return nil, fmt.Errorf("persist decision: %w", err)
	}

	uc.log.Info().
		Str("conflict_id", rec.ID).
		Str("opportunity_id", rec.OpportunityID).
		Str("field", rec.FieldName).
		Str("resolution", rec.Resolution).
		Str("decided_by", req.DecidedBy).
		Msg("conflict settled")

	return &dto.ConflictDecisionResponse{
		Conflict:    dto.NewConflictResponse(rec),
		Opportunity: dto.NewOpportunityResponse(opp),
	}, nil
}

// acceptRemote writes the conflict's remote value into the record. Phase is
// not written directly: regressions go through the evaluator override so the
// reason lands in health_reason.
func (uc *UseCase) acceptRemote(opp *entity.Opportunity, rec *entity.ConflictRecord, note string) (*health.PhaseOverride, error) {
	switch rec.FieldName {
	case "phase":
		phase, err := strconv.Atoi(rec.RemoteValue)
		if err != nil {
			return nil, fmt.Errorf("%w: stored phase %q", domain.ErrInvalidInput, rec.RemoteValue)
		}
		if phase < opp.Phase && note == "" {
			return nil, fmt.Errorf("%w: accepting a phase regression", domain.ErrReasonRequired)
		}
		return &health.PhaseOverride{Phase: phase, Reason: note}, nil
	case "deal_name":
		opp.DealName = rec.RemoteValue
	case "owner":
		opp.Owner = rec.RemoteValue
	case "territory":
		opp.Territory = rec.RemoteValue
	case "local_currency":
		opp.LocalCurrency = rec.RemoteValue
	case "blocked_reason":
		opp.Milestones.BlockedReason = rec.RemoteValue
	case "amount_local":
		d, err := decimal.NewFromString(rec.RemoteValue)
		if err != nil {
			return nil, fmt.Errorf("%w: stored amount %q", domain.ErrInvalidInput, rec.RemoteValue)
		}
		opp.AmountLocal = d
	case "probability":
		n, err := strconv.Atoi(rec.RemoteValue)
		if err != nil {
			return nil, fmt.Errorf("%w: stored probability %q", domain.ErrInvalidInput, rec.RemoteValue)
		}
		opp.Probability = n
	case "blocked":
		b, err := strconv.ParseBool(rec.RemoteValue)
		if err != nil {
			return nil, fmt.Errorf("%w: stored blocked flag %q", domain.ErrInvalidInput, rec.RemoteValue)
		}
		opp.Milestones.Blocked = b
	case "blockers":
		opp.Blockers = splitList(rec.RemoteValue)
	case "action_items":
		opp.ActionItems = splitList(rec.RemoteValue)
	case "closing_date", "proposal_date", "po_date", "kickoff_date", "invoice_date", "payment_date", "revenue_date":
		t, err := parseDate(rec.RemoteValue)
		if err != nil {
			return nil, fmt.Errorf("%w: stored date %q", domain.ErrInvalidInput, rec.RemoteValue)
		}
		setMilestoneDate(&opp.Milestones, rec.FieldName, t)
	case "deleted":
		if rec.RemoteValue == "deleted" {
			now := time.Now()
			opp.DeletedAt = &now
		} else {
			opp.DeletedAt = nil
		}
	default:
		return nil, fmt.Errorf("%w: unknown conflict field %q", domain.ErrInvalidInput, rec.FieldName)
	}
	return nil, nil
}

// evaluate recomputes the derived fields after a decision, mirroring what the
// sync pass does for merged records.
func (uc *UseCase) evaluate(opp *entity.Opportunity, override *health.PhaseOverride, today time.Time) {
	if opp.Deleted() {
		return
	}

	conv := uc.converter.Convert(opp.AmountLocal, opp.LocalCurrency, today)
	opp.AmountBase = conv.Amount
	opp.ConversionSource = conv.Source
	opp.RateUsed = conv.RateUsed
	opp.RateWarning = conv.Warning

	res, err := health.Evaluate(health.Input{
		Timeline:           &opp.Milestones,
		Phase:              opp.Phase,
		Probability:        opp.Probability,
		LastModifiedLocal:  opp.LastModifiedLocal,
		LastModifiedRemote: opp.LastModifiedRemote,
		Today:              today,
		Override:           override,
	})
	if err != nil {
		opp.HealthSignal = entity.SignalNeedsUpdate
		opp.HealthReason = strings.ReplaceAll(err.Error(), "\n", "; ")
		opp.RequiresAttention = false
		return
	}
	opp.Phase = res.Phase
	opp.HealthSignal = res.Signal
	opp.HealthReason = res.Reason
	opp.RequiresAttention = res.RequiresAttention
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ", ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func setMilestoneDate(tl *entity.MilestoneTimeline, field string, t *time.Time) {
	switch field {
	case "closing_date":
		tl.ClosingDate = t
	case "proposal_date":
		tl.ProposalDate = t
	case "po_date":
		tl.PODate = t
	case "kickoff_date":
		tl.KickoffDate = t
	case "invoice_date":
		tl.InvoiceDate = t
	case "payment_date":
		tl.PaymentDate = t
	case "revenue_date":
		tl.RevenueDate = t
	}
}
