package conflict_test

// ─────────────────────────────────────────────────────────────
// Tests for field-by-field conflict resolution
// ─────────────────────────────────────────────────────────────

import (
	"testing"
	"time"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/conflict"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	baseline   = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	localEdit  = baseline.Add(24 * time.Hour)
	remoteEdit = baseline.Add(48 * time.Hour)
)

// record returns the shared starting point both sides diverge from.
func record() *entity.Opportunity {
	return &entity.Opportunity{
		ID:                 "opp-301",
		DealName:           "GovTech data platform",
		Owner:              "sari.tan",
		Territory:          "SG",
		AmountLocal:        decimal.NewFromInt(100000),
		LocalCurrency:      "USD",
		Probability:        60,
		Phase:              2,
		Blockers:           []string{"security review"},
		ActionItems:        []string{"send revised SOW"},
		LastModifiedLocal:  baseline,
		LastModifiedRemote: baseline,
	}
}

// times builds FieldTimes marking the given fields as edited on each side.
func times(localFields, remoteFields []string) conflict.FieldTimes {
	ft := conflict.FieldTimes{
		Baseline: baseline,
		Local:    make(map[string]time.Time),
		Remote:   make(map[string]time.Time),
	}
	for _, f := range localFields {
		ft.Local[f] = localEdit
	}
	for _, f := range remoteFields {
		ft.Remote[f] = remoteEdit
	}
	return ft
}

func TestResolve_LocalOnlyEditIsKeptWithoutConflict(t *testing.T) {
	local := record()
	local.Probability = 75
	remote := record()

	got, err := conflict.Resolve(local, remote, times([]string{"probability"}, nil))

	require.NoError(t, err)
	assert.Equal(t, 75, got.Merged.Probability, "local-only edit must survive the pass")
	assert.Empty(t, got.Conflicts, "a single-sided edit is not a conflict")
}

func TestResolve_RemoteOnlyEditIsApplied(t *testing.T) {
	local := record()
	remote := record()
	remote.Owner = "beatriz.lim"
	remote.Probability = 80

	got, err := conflict.Resolve(local, remote, times(nil, []string{"owner", "probability"}))

	require.NoError(t, err)
	assert.Equal(t, "beatriz.lim", got.Merged.Owner)
	assert.Equal(t, 80, got.Merged.Probability)
	assert.Empty(t, got.Conflicts)
}

func TestResolve_SameValueOnBothSidesIsNotAConflict(t *testing.T) {
	local := record()
	local.Probability = 90
	remote := record()
	remote.Probability = 90

	got, err := conflict.Resolve(local, remote, times([]string{"probability"}, []string{"probability"}))

	require.NoError(t, err)
	assert.Equal(t, 90, got.Merged.Probability)
	assert.Empty(t, got.Conflicts, "identical edits need no arbitration")
}

func TestResolve_DefaultFieldGoesToCRM(t *testing.T) {
	local := record()
	local.Owner = "kevin.ng"
	remote := record()
	remote.Owner = "beatriz.lim"

	got, err := conflict.Resolve(local, remote, times([]string{"owner"}, []string{"owner"}))

	require.NoError(t, err)
	assert.Equal(t, "beatriz.lim", got.Merged.Owner, "CRM wins the default policy")
	require.Len(t, got.Conflicts, 1)
	rec := got.Conflicts[0]
	assert.Equal(t, "owner", rec.FieldName)
	assert.Equal(t, entity.ResolutionCRMWins, rec.Resolution)
	assert.Equal(t, "kevin.ng", rec.LocalValue)
	assert.Equal(t, "beatriz.lim", rec.RemoteValue)
	assert.Empty(t, got.Pending(), "an auto-resolved conflict is not pending")
}

func TestResolve_SmallAmountGapAutoResolvesToCRM(t *testing.T) {
	local := record()
	local.AmountLocal = decimal.NewFromInt(100000)
	remote := record()
	remote.AmountLocal = decimal.NewFromInt(110000) // 9.1% apart

	got, err := conflict.Resolve(local, remote, times([]string{"amount_local"}, []string{"amount_local"}))

	require.NoError(t, err)
	assert.True(t, got.Merged.AmountLocal.Equal(decimal.NewFromInt(110000)))
	require.Len(t, got.Conflicts, 1)
	assert.Equal(t, entity.ResolutionCRMWins, got.Conflicts[0].Resolution)
}

func TestResolve_DivergentAmountsGoToManualReview(t *testing.T) {
	// Local raised the amount by 25%, the CRM moved it somewhere else
	// entirely. 125000 vs 95000 is a 24% gap, past the auto-resolve limit.
	local := record()
	local.AmountLocal = decimal.NewFromInt(125000)
	remote := record()
	remote.AmountLocal = decimal.NewFromInt(95000)

	got, err := conflict.Resolve(local, remote, times([]string{"amount_local"}, []string{"amount_local"}))

	require.NoError(t, err)
	require.Len(t, got.Conflicts, 1)
	rec := got.Conflicts[0]
	assert.Equal(t, "amount_local", rec.FieldName)
	assert.Equal(t, entity.ResolutionManualPending, rec.Resolution)
	assert.Contains(t, rec.Reason, "diverge")
	assert.True(t, got.Merged.AmountLocal.Equal(decimal.NewFromInt(125000)),
		"pending conflicts keep the local value until reviewed")
}

func TestResolve_AmountGapBoundaryIsExclusive(t *testing.T) {
	// Exactly 20% apart still auto-resolves; the limit is strict.
	local := record()
	local.AmountLocal = decimal.NewFromInt(100000)
	remote := record()
	remote.AmountLocal = decimal.NewFromInt(80000)

	got, err := conflict.Resolve(local, remote, times([]string{"amount_local"}, []string{"amount_local"}))

	require.NoError(t, err)
	require.Len(t, got.Conflicts, 1)
	assert.Equal(t, entity.ResolutionCRMWins, got.Conflicts[0].Resolution)
	assert.True(t, got.Merged.AmountLocal.Equal(decimal.NewFromInt(80000)))
}

func TestResolve_PhaseRegressionNeedsReview(t *testing.T) {
	local := record()
	local.Phase = 3
	remote := record()
	remote.Phase = 2

	got, err := conflict.Resolve(local, remote, times([]string{"phase"}, []string{"phase"}))

	require.NoError(t, err)
	require.Len(t, got.Conflicts, 1)
	rec := got.Conflicts[0]
	assert.Equal(t, entity.ResolutionManualPending, rec.Resolution)
	assert.Contains(t, rec.Reason, "regress")
	assert.Equal(t, 3, got.Merged.Phase, "phase never regresses without a decision")
}

func TestResolve_PhaseAdvanceGoesToCRM(t *testing.T) {
	local := record()
	local.Phase = 2
	remote := record()
	remote.Phase = 3

	got, err := conflict.Resolve(local, remote, times([]string{"phase"}, []string{"phase"}))

	require.NoError(t, err)
	require.Len(t, got.Conflicts, 1)
	assert.Equal(t, entity.ResolutionCRMWins, got.Conflicts[0].Resolution)
	assert.Equal(t, 3, got.Merged.Phase)
}

func TestResolve_TerritoryIsAlwaysManual(t *testing.T) {
	local := record()
	local.Territory = "MY"
	remote := record()
	remote.Territory = "ID"

	got, err := conflict.Resolve(local, remote, times([]string{"territory"}, []string{"territory"}))

	require.NoError(t, err)
	require.Len(t, got.Conflicts, 1)
	rec := got.Conflicts[0]
	assert.Equal(t, entity.ResolutionManualPending, rec.Resolution)
	assert.Contains(t, rec.Reason, "approval")
	assert.Equal(t, "MY", got.Merged.Territory)
}

func TestResolve_ListFieldsUnionMerge(t *testing.T) {
	local := record()
	local.Blockers = []string{"security review", "budget freeze"}
	remote := record()
	remote.Blockers = []string{"security review", "legal signoff"}

	got, err := conflict.Resolve(local, remote, times([]string{"blockers"}, []string{"blockers"}))

	require.NoError(t, err)
	assert.Equal(t, []string{"security review", "budget freeze", "legal signoff"}, got.Merged.Blockers,
		"union keeps local order first and deduplicates")
	require.Len(t, got.Conflicts, 1)
	assert.Equal(t, entity.ResolutionMerged, got.Conflicts[0].Resolution)
	assert.Empty(t, got.Pending())
}

func TestResolve_MilestoneDateTakenFromChangedSide(t *testing.T) {
	po := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	local := record()
	remote := record()
	remote.Milestones.PODate = &po

	got, err := conflict.Resolve(local, remote, times(nil, []string{"po_date"}))

	require.NoError(t, err)
	require.NotNil(t, got.Merged.Milestones.PODate)
	assert.True(t, got.Merged.Milestones.PODate.Equal(po))
	assert.Empty(t, got.Conflicts)
}

func TestResolve_CleanRemoteDeleteIsAccepted(t *testing.T) {
	deletedAt := remoteEdit
	local := record()
	remote := record()
	remote.DeletedAt = &deletedAt
	remote.LastModifiedRemote = remoteEdit

	got, err := conflict.Resolve(local, remote, times(nil, nil))

	require.NoError(t, err)
	assert.True(t, got.Merged.Deleted(), "an uncontested CRM delete is applied")
	assert.Empty(t, got.Conflicts)
}

func TestResolve_RemoteDeleteOverLocalEditsIsPending(t *testing.T) {
	deletedAt := remoteEdit
	local := record()
	local.Probability = 75
	local.LastModifiedLocal = localEdit
	remote := record()
	remote.DeletedAt = &deletedAt
	remote.LastModifiedRemote = remoteEdit

	got, err := conflict.Resolve(local, remote, times([]string{"probability"}, nil))

	require.NoError(t, err)
	assert.False(t, got.Merged.Deleted(), "local edits hold the record active until reviewed")
	assert.Equal(t, 75, got.Merged.Probability)
	require.Len(t, got.Conflicts, 1)
	rec := got.Conflicts[0]
	assert.Equal(t, "deleted", rec.FieldName)
	assert.Equal(t, entity.ResolutionManualPending, rec.Resolution)
	assert.Equal(t, "active", rec.LocalValue)
	assert.Equal(t, "deleted", rec.RemoteValue)
}

func TestResolve_LocalDeleteOverRemoteEditsIsPending(t *testing.T) {
	deletedAt := localEdit
	local := record()
	local.DeletedAt = &deletedAt
	local.LastModifiedLocal = localEdit
	remote := record()
	remote.Owner = "beatriz.lim"
	remote.LastModifiedRemote = remoteEdit

	got, err := conflict.Resolve(local, remote, times(nil, []string{"owner"}))

	require.NoError(t, err)
	assert.True(t, got.Merged.Deleted(), "a record is never revived implicitly")
	assert.Equal(t, "sari.tan", got.Merged.Owner, "no field merging happens on a deletion conflict")
	require.Len(t, got.Conflicts, 1)
	assert.Equal(t, entity.ResolutionManualPending, got.Conflicts[0].Resolution)
}

func TestResolve_BothDeletedAgreeSilently(t *testing.T) {
	deletedAt := localEdit
	local := record()
	local.DeletedAt = &deletedAt
	remote := record()
	remote.DeletedAt = &deletedAt

	got, err := conflict.Resolve(local, remote, times(nil, nil))

	require.NoError(t, err)
	assert.True(t, got.Merged.Deleted())
	assert.Empty(t, got.Conflicts)
}

func TestResolve_SecondPassOverMergedIsStable(t *testing.T) {
	// One field of every policy class in a single pass.
	local := record()
	local.Owner = "kevin.ng"
	local.AmountLocal = decimal.NewFromInt(125000)
	local.Territory = "MY"
	local.Blockers = []string{"security review", "budget freeze"}
	remote := record()
	remote.Owner = "beatriz.lim"
	remote.AmountLocal = decimal.NewFromInt(95000)
	remote.Territory = "ID"
	remote.Blockers = []string{"legal signoff"}

	edited := []string{"owner", "amount_local", "territory", "blockers"}
	ft := times(edited, edited)

	first, err := conflict.Resolve(local, remote, ft)
	require.NoError(t, err)
	require.Len(t, first.Pending(), 2, "amount and territory wait for review")

	second, err := conflict.Resolve(first.Merged, remote, ft)
	require.NoError(t, err)

	assert.Equal(t, first.Merged, second.Merged, "re-running the pass must not move any field")
	assert.Equal(t, first.Pending(), second.Pending(), "the pending set must be reproduced, not grown")
	for _, c := range second.Conflicts {
		assert.NotEqual(t, entity.ResolutionCRMWins, c.Resolution,
			"fields the CRM already won are settled and cannot conflict again")
	}
}

func TestResolve_NilRecordIsRejected(t *testing.T) {
	_, err := conflict.Resolve(nil, record(), conflict.FieldTimes{})
	assert.ErrorIs(t, err, conflict.ErrNilRecord)

	_, err = conflict.Resolve(record(), nil, conflict.FieldTimes{})
	assert.ErrorIs(t, err, conflict.ErrNilRecord)
}

func TestResolve_MismatchedIDsAreRejected(t *testing.T) {
	other := record()
	other.ID = "opp-999"

	_, err := conflict.Resolve(record(), other, conflict.FieldTimes{})

	assert.ErrorIs(t, err, conflict.ErrRecordMismatch)
}
