package review_test

// ─────────────────────────────────────────────────────────────
// Tests for reviewer decisions over pending conflicts
// ─────────────────────────────────────────────────────────────

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/dto"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/review"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/currency"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/repository"
	"github.com/jrkphani/pipeline-pulse-sub004/pkg/keylock"
	"github.com/jrkphani/pipeline-pulse-sub004/pkg/logger"
)

type memOppRepo struct {
	byID map[string]*entity.Opportunity
}

func (r *memOppRepo) Create(o *entity.Opportunity) error { return r.Update(o) }

func (r *memOppRepo) Update(o *entity.Opportunity) error {
	cp := *o
	r.byID[o.ID] = &cp
	return nil
}

func (r *memOppRepo) GetByID(id string) (*entity.Opportunity, error) {
	o, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *memOppRepo) List(int, int) ([]*entity.Opportunity, error) { return nil, nil }
func (r *memOppRepo) ListRequiringAttention(int, int) ([]*entity.Opportunity, error) {
	return nil, nil
}
func (r *memOppRepo) PurgeDeletedBefore(time.Time) (int64, error) { return 0, nil }

type memConflictRepo struct {
	byID map[string]*entity.ConflictRecord
}

func (r *memConflictRepo) Create(c *entity.ConflictRecord) error { return r.Update(c) }

func (r *memConflictRepo) Update(c *entity.ConflictRecord) error {
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

func (r *memConflictRepo) GetByID(id string) (*entity.ConflictRecord, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *memConflictRepo) ListPending(limit, offset int) ([]*entity.ConflictRecord, error) {
	var out []*entity.ConflictRecord
	for _, c := range r.byID {
		if c.Pending() {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memConflictRepo) PurgeResolvedBefore(time.Time) (int64, error) { return 0, nil }

type immediateTx struct {
	opp       *memOppRepo
	conflicts *memConflictRepo
}

func (t immediateTx) Run(_ context.Context, fn func(repository.OpportunityRepository, repository.ConflictRepository) error) error {
	return fn(t.opp, t.conflicts)
}

type fixture struct {
	uc        *review.UseCase
	opps      *memOppRepo
	conflicts *memConflictRepo
}

func newFixture() *fixture {
	opps := &memOppRepo{byID: make(map[string]*entity.Opportunity)}
	conflicts := &memConflictRepo{byID: make(map[string]*entity.ConflictRecord)}
	store := currency.NewStore()
	store.Merge([]currency.Rate{{
		Currency:  "USD",
		ToBase:    decimal.RequireFromString("1.35"),
		FetchedAt: time.Now().AddDate(0, 0, -1),
	}})
	converter := currency.NewConverter(store, currency.Config{})
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	uc := review.NewUseCase(conflicts, opps, immediateTx{opp: opps, conflicts: conflicts}, converter, keylock.New(), log)
	return &fixture{uc: uc, opps: opps, conflicts: conflicts}
}

func healthyOpp(id string) *entity.Opportunity {
	proposal := time.Now().AddDate(0, 0, -5)
	closing := time.Now().AddDate(0, 0, 60)
	return &entity.Opportunity{
		ID:                 id,
		DealName:           "ACME rollout",
		Owner:              "sari.tan",
		Territory:          "SG",
		AmountLocal:        decimal.NewFromInt(125000),
		LocalCurrency:      "USD",
		Probability:        60,
		Phase:              2,
		Milestones:         entity.MilestoneTimeline{ProposalDate: &proposal, ClosingDate: &closing},
		LastModifiedLocal:  time.Now().Add(-24 * time.Hour),
		LastModifiedRemote: time.Now().Add(-2 * time.Hour),
	}
}

func pendingConflict(id, oppID, field, local, remote string) *entity.ConflictRecord {
	return &entity.ConflictRecord{
		ID:            id,
		OpportunityID: oppID,
		FieldName:     field,
		LocalValue:    local,
		RemoteValue:   remote,
		Resolution:    entity.ResolutionManualPending,
		DetectedAt:    time.Now().Add(-time.Hour),
	}
}

func TestListPending_ReturnsOnlyUndecidedConflicts(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.conflicts.Create(pendingConflict("c1", "opp-1", "amount_local", "125000", "95000")))
	settled := pendingConflict("c2", "opp-1", "owner", "a", "b")
	settledAt := time.Now()
	settled.Resolution = entity.ResolutionCRMWins
	settled.ResolvedAt = &settledAt
	require.NoError(t, f.conflicts.Create(settled))

	got, err := f.uc.ListPending(50, 0)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, "amount_local", got[0].FieldName)
}

func TestDecide_KeepLocalConfirmsTheLocalValue(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.opps.Create(healthyOpp("opp-1")))
	require.NoError(t, f.conflicts.Create(pendingConflict("c1", "opp-1", "amount_local", "125000", "95000")))

	resp, err := f.uc.Decide(context.Background(), "c1", dto.ConflictDecisionRequest{
		Decision:  entity.DecisionKeepLocal,
		DecidedBy: "ops.lead",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.ResolutionLocalWins, resp.Conflict.Resolution)
	assert.Equal(t, "ops.lead", resp.Conflict.ResolvedBy)
	require.NotNil(t, resp.Conflict.ResolvedAt)

	stored, _ := f.opps.GetByID("opp-1")
	assert.True(t, stored.AmountLocal.Equal(decimal.NewFromInt(125000)))
	assert.True(t, stored.AmountBase.Equal(decimal.RequireFromString("168750")),
		"decision re-runs the conversion")
	assert.Equal(t, "ops.lead", stored.UpdatedBy)
}

func TestDecide_AcceptRemoteWritesTheCRMValue(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.opps.Create(healthyOpp("opp-1")))
	require.NoError(t, f.conflicts.Create(pendingConflict("c1", "opp-1", "amount_local", "125000", "95000")))

	resp, err := f.uc.Decide(context.Background(), "c1", dto.ConflictDecisionRequest{
		Decision:  entity.DecisionAcceptRemote,
		DecidedBy: "ops.lead",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.ResolutionCRMWins, resp.Conflict.Resolution)

	stored, _ := f.opps.GetByID("opp-1")
	assert.True(t, stored.AmountLocal.Equal(decimal.NewFromInt(95000)))
	assert.True(t, stored.AmountBase.Equal(decimal.RequireFromString("128250")))
	assert.Equal(t, currency.SourceLive, stored.ConversionSource)
}

func TestDecide_PhaseRegressionNeedsANote(t *testing.T) {
	f := newFixture()
	opp := healthyOpp("opp-1")
	opp.Phase = 3
	require.NoError(t, f.opps.Create(opp))
	require.NoError(t, f.conflicts.Create(pendingConflict("c1", "opp-1", "phase", "3", "2")))

	_, err := f.uc.Decide(context.Background(), "c1", dto.ConflictDecisionRequest{
		Decision:  entity.DecisionAcceptRemote,
		DecidedBy: "ops.lead",
	})

	assert.ErrorIs(t, err, domain.ErrReasonRequired)

	rec, _ := f.conflicts.GetByID("c1")
	assert.True(t, rec.Pending(), "a rejected decision leaves the conflict pending")
	stored, _ := f.opps.GetByID("opp-1")
	assert.Equal(t, 3, stored.Phase)
}

func TestDecide_PhaseRegressionWithNoteIsLogged(t *testing.T) {
	f := newFixture()
	opp := healthyOpp("opp-1")
	opp.Phase = 3
	require.NoError(t, f.opps.Create(opp))
	require.NoError(t, f.conflicts.Create(pendingConflict("c1", "opp-1", "phase", "3", "2")))

	resp, err := f.uc.Decide(context.Background(), "c1", dto.ConflictDecisionRequest{
		Decision:  entity.DecisionAcceptRemote,
		DecidedBy: "ops.lead",
		Note:      "client pulled the PO back to negotiation",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.ResolutionCRMWins, resp.Conflict.Resolution)

	stored, _ := f.opps.GetByID("opp-1")
	assert.Equal(t, 2, stored.Phase, "the regression is applied through the override")
	assert.Contains(t, stored.HealthReason, "phase set to 2: client pulled the PO back to negotiation")
}

func TestDecide_SecondDecisionIsRejected(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.opps.Create(healthyOpp("opp-1")))
	require.NoError(t, f.conflicts.Create(pendingConflict("c1", "opp-1", "owner", "sari.tan", "beatriz.lim")))

	_, err := f.uc.Decide(context.Background(), "c1", dto.ConflictDecisionRequest{
		Decision: entity.DecisionKeepLocal, DecidedBy: "ops.lead",
	})
	require.NoError(t, err)

	_, err = f.uc.Decide(context.Background(), "c1", dto.ConflictDecisionRequest{
		Decision: entity.DecisionAcceptRemote, DecidedBy: "ops.lead",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDecide_UnknownConflictIsNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Decide(context.Background(), "missing", dto.ConflictDecisionRequest{
		Decision: entity.DecisionKeepLocal, DecidedBy: "ops.lead",
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDecide_ValidatesInput(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.conflicts.Create(pendingConflict("c1", "opp-1", "owner", "a", "b")))

	_, err := f.uc.Decide(context.Background(), "c1", dto.ConflictDecisionRequest{
		Decision: "discard", DecidedBy: "ops.lead",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Decide(context.Background(), "c1", dto.ConflictDecisionRequest{
		Decision: entity.DecisionKeepLocal,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "decided_by is required for the audit trail")
}

func TestDecide_AcceptRemoteDeletionSoftDeletes(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.opps.Create(healthyOpp("opp-1")))
	require.NoError(t, f.conflicts.Create(pendingConflict("c1", "opp-1", "deleted", "active", "deleted")))

	_, err := f.uc.Decide(context.Background(), "c1", dto.ConflictDecisionRequest{
		Decision: entity.DecisionAcceptRemote, DecidedBy: "ops.lead",
	})

	require.NoError(t, err)
	stored, _ := f.opps.GetByID("opp-1")
	assert.True(t, stored.Deleted())
}

func TestDecide_KeepLocalOnDeletionStaysActive(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.opps.Create(healthyOpp("opp-1")))
	require.NoError(t, f.conflicts.Create(pendingConflict("c1", "opp-1", "deleted", "active", "deleted")))

	resp, err := f.uc.Decide(context.Background(), "c1", dto.ConflictDecisionRequest{
		Decision: entity.DecisionKeepLocal, DecidedBy: "ops.lead",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.ResolutionLocalWins, resp.Conflict.Resolution)
	stored, _ := f.opps.GetByID("opp-1")
	assert.False(t, stored.Deleted())
}
