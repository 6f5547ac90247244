// Package conflict reconciles a locally edited opportunity against the CRM
// copy of the same record, field by field. Each field resolves independently:
// single-sided edits are applied silently, double-sided edits produce a
// ConflictRecord tagged with the chosen outcome. Only manual_pending records
// are meant to be persisted; the rest document what the pass auto-resolved.
package conflict

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var (
	ErrNilRecord      = errors.New("cannot resolve a nil record")
	ErrRecordMismatch = errors.New("records do not belong to the same opportunity")
)

// amountDivergenceLimit is the relative gap between the two amounts above
// which the resolver refuses to pick a side.
var amountDivergenceLimit = decimal.NewFromFloat(0.20)

// FieldTimes carries the per-field modification stamps of both sides and the
// baseline of the last completed sync. A field counts as changed on a side
// when its stamp is strictly after the baseline; absent entries count as
// unchanged, so adapters with only record-level stamps may fill every field
// with the same value.
type FieldTimes struct {
	Baseline time.Time
	Local    map[string]time.Time
	Remote   map[string]time.Time
}

func (ft FieldTimes) localChanged(field string) bool {
	return ft.Local[field].After(ft.Baseline)
}

func (ft FieldTimes) remoteChanged(field string) bool {
	return ft.Remote[field].After(ft.Baseline)
}

// Merge is the outcome of one resolution pass.
type Merge struct {
	Merged    *entity.Opportunity
	Conflicts []entity.ConflictRecord
}

// Pending filters the conflicts that still need a human decision.
func (m Merge) Pending() []entity.ConflictRecord {
	var out []entity.ConflictRecord
	for _, c := range m.Conflicts {
		if c.Resolution == entity.ResolutionManualPending {
			out = append(out, c)
		}
	}
	return out
}

// Resolve merges remote into local. The returned record starts as a deep copy
// of local, so a manual_pending field keeps the local value until a reviewer
// decides; running the same pass again over the merged result yields the same
// merged record and the same pending set.
func Resolve(local, remote *entity.Opportunity, ft FieldTimes) (Merge, error) {
	if local == nil || remote == nil {
		return Merge{}, ErrNilRecord
	}
	if local.ID != remote.ID {
		return Merge{}, fmt.Errorf("%w: %s vs %s", ErrRecordMismatch, local.ID, remote.ID)
	}

	merged := cloneRecord(local)
	merged.LastModifiedRemote = remote.LastModifiedRemote

	// Deletion disagreements suspend field merging entirely. A record is
	// never pulled back into an active state, and never silently deleted
	// over fresh local edits.
	if rec, done := resolveDeletion(local, remote, merged, ft); done {
		out := Merge{Merged: merged}
		if rec != nil {
			out.Conflicts = append(out.Conflicts, *rec)
		}
		return out, nil
	}

	var conflicts []entity.ConflictRecord
	for _, h := range registry() {
		lc := ft.localChanged(h.name)
		rc := ft.remoteChanged(h.name)
		switch {
		case !rc:
			// nothing new from the CRM; merged already carries local
		case !lc:
			h.copyTo(merged, remote)
		case h.equal(local, remote):
			// both sides landed on the same value
		default:
			rec := entity.ConflictRecord{
				OpportunityID:    local.ID,
				FieldName:        h.name,
				LocalValue:       h.render(local),
				RemoteValue:      h.render(remote),
				LocalModifiedAt:  ft.Local[h.name],
				RemoteModifiedAt: ft.Remote[h.name],
			}
			rec.Resolution, rec.Reason = decide(h.name, local, remote)
			switch rec.Resolution {
			case entity.ResolutionCRMWins:
				h.copyTo(merged, remote)
			case entity.ResolutionMerged:
				applyUnion(merged, h.name, local, remote)
			case entity.ResolutionManualPending:
				// merged keeps the local value
			}
			conflicts = append(conflicts, rec)
		}
	}
	return Merge{Merged: merged, Conflicts: conflicts}, nil
}

// decide picks the resolution for a field both sides changed to different
// values. The default is CRM-wins; the exceptions are the cases where an
// automatic pick could lose money, approvals or delivery state.
func decide(field string, local, remote *entity.Opportunity) (resolution, reason string) {
	switch field {
	case "territory":
		return entity.ResolutionManualPending, "territory reassignment requires approval"
	case "amount_local":
		gap := relativeGap(local.AmountLocal, remote.AmountLocal)
		if gap.GreaterThan(amountDivergenceLimit) {
			pct := gap.Mul(decimal.NewFromInt(100)).Round(0)
			return entity.ResolutionManualPending,
				fmt.Sprintf("amounts diverge by %s%%, above the %s%% auto-resolve limit",
					pct.String(), amountDivergenceLimit.Mul(decimal.NewFromInt(100)).Round(0).String())
		}
		return entity.ResolutionCRMWins, ""
	case "phase":
		if remote.Phase < local.Phase {
			return entity.ResolutionManualPending,
				fmt.Sprintf("phase would regress from %d to %d; regressions need a logged reason", local.Phase, remote.Phase)
		}
		return entity.ResolutionCRMWins, ""
	case "blockers", "action_items":
		return entity.ResolutionMerged, ""
	default:
		return entity.ResolutionCRMWins, ""
	}
}

// relativeGap is |remote-local| / max(|local|, |remote|), zero when both are zero.
func relativeGap(local, remote decimal.Decimal) decimal.Decimal {
	denom := decimal.Max(local.Abs(), remote.Abs())
	if denom.IsZero() {
		return decimal.Zero
	}
	return remote.Sub(local).Abs().Div(denom)
}

// resolveDeletion handles soft-delete disagreement before any field merging.
// done reports that the pass is complete and the field walk must be skipped.
func resolveDeletion(local, remote, merged *entity.Opportunity, ft FieldTimes) (rec *entity.ConflictRecord, done bool) {
	if local.Deleted() == remote.Deleted() {
		// agreement: both active continues into the field walk, both
		// deleted means there is nothing left to merge
		return nil, local.Deleted()
	}

	localChanged := local.LastModifiedLocal.After(ft.Baseline)
	remoteChanged := remote.LastModifiedRemote.After(ft.Baseline)

	if remote.Deleted() {
		if !localChanged {
			// clean CRM-side delete, accept it
			merged.DeletedAt = cloneTime(remote.DeletedAt)
			return nil, true
		}
		return deletionConflict(local, remote, "active", "deleted",
			"record deleted in the CRM after local edits"), true
	}

	// local is deleted, remote is not
	if !remoteChanged {
		return nil, true // stays deleted
	}
	return deletionConflict(local, remote, "deleted", "active",
		"CRM edits arrived for a locally deleted record"), true
}

func deletionConflict(local, remote *entity.Opportunity, localState, remoteState, reason string) *entity.ConflictRecord {
	return &entity.ConflictRecord{
		OpportunityID:    local.ID,
		FieldName:        "deleted",
		LocalValue:       localState,
		RemoteValue:      remoteState,
		LocalModifiedAt:  local.LastModifiedLocal,
		RemoteModifiedAt: remote.LastModifiedRemote,
		Resolution:       entity.ResolutionManualPending,
		Reason:           reason,
	}
}

// applyUnion writes the order-preserving union of a list field into merged,
// local entries first.
func applyUnion(merged *entity.Opportunity, field string, local, remote *entity.Opportunity) {
	switch field {
	case "blockers":
		merged.Blockers = unionStrings(local.Blockers, remote.Blockers)
	case "action_items":
		merged.ActionItems = unionStrings(local.ActionItems, remote.ActionItems)
	}
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	for _, s := range b {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// ─────────────────────────────────────────────────────────────
// Field registry
// ─────────────────────────────────────────────────────────────

// FieldNames lists every syncable field in registry order. Adapters that only
// know record-level modification stamps use it to fill FieldTimes uniformly.
func FieldNames() []string {
	handlers := registry()
	names := make([]string, len(handlers))
	for i, h := range handlers {
		names[i] = h.name
	}
	return names
}

// fieldHandler gives the resolver a uniform view of one syncable field.
type fieldHandler struct {
	name   string
	equal  func(a, b *entity.Opportunity) bool
	copyTo func(dst, src *entity.Opportunity)
	render func(o *entity.Opportunity) string
}

// registry lists every syncable field in a stable order. Fields with a
// non-default policy (territory, amount_local, phase, the list fields) are
// matched by name in decide.
func registry() []fieldHandler {
	return []fieldHandler{
		strField("deal_name", func(o *entity.Opportunity) *string { return &o.DealName }),
		strField("owner", func(o *entity.Opportunity) *string { return &o.Owner }),
		strField("territory", func(o *entity.Opportunity) *string { return &o.Territory }),
		decField("amount_local", func(o *entity.Opportunity) *decimal.Decimal { return &o.AmountLocal }),
		strField("local_currency", func(o *entity.Opportunity) *string { return &o.LocalCurrency }),
		intField("probability", func(o *entity.Opportunity) *int { return &o.Probability }),
		intField("phase", func(o *entity.Opportunity) *int { return &o.Phase }),
		dateField("closing_date", func(o *entity.Opportunity) **time.Time { return &o.Milestones.ClosingDate }),
		dateField("proposal_date", func(o *entity.Opportunity) **time.Time { return &o.Milestones.ProposalDate }),
		dateField("po_date", func(o *entity.Opportunity) **time.Time { return &o.Milestones.PODate }),
		dateField("kickoff_date", func(o *entity.Opportunity) **time.Time { return &o.Milestones.KickoffDate }),
		dateField("invoice_date", func(o *entity.Opportunity) **time.Time { return &o.Milestones.InvoiceDate }),
		dateField("payment_date", func(o *entity.Opportunity) **time.Time { return &o.Milestones.PaymentDate }),
		dateField("revenue_date", func(o *entity.Opportunity) **time.Time { return &o.Milestones.RevenueDate }),
		boolField("blocked", func(o *entity.Opportunity) *bool { return &o.Milestones.Blocked }),
		strField("blocked_reason", func(o *entity.Opportunity) *string { return &o.Milestones.BlockedReason }),
		listField("blockers", func(o *entity.Opportunity) *[]string { return &o.Blockers }),
		listField("action_items", func(o *entity.Opportunity) *[]string { return &o.ActionItems }),
	}
}

func strField(name string, sel func(*entity.Opportunity) *string) fieldHandler {
	return fieldHandler{
		name:   name,
		equal:  func(a, b *entity.Opportunity) bool { return *sel(a) == *sel(b) },
		copyTo: func(dst, src *entity.Opportunity) { *sel(dst) = *sel(src) },
		render: func(o *entity.Opportunity) string { return *sel(o) },
	}
}

func intField(name string, sel func(*entity.Opportunity) *int) fieldHandler {
	return fieldHandler{
		name:   name,
		equal:  func(a, b *entity.Opportunity) bool { return *sel(a) == *sel(b) },
		copyTo: func(dst, src *entity.Opportunity) { *sel(dst) = *sel(src) },
		render: func(o *entity.Opportunity) string { return strconv.Itoa(*sel(o)) },
	}
}

func boolField(name string, sel func(*entity.Opportunity) *bool) fieldHandler {
	return fieldHandler{
		name:   name,
		equal:  func(a, b *entity.Opportunity) bool { return *sel(a) == *sel(b) },
		copyTo: func(dst, src *entity.Opportunity) { *sel(dst) = *sel(src) },
		render: func(o *entity.Opportunity) string { return strconv.FormatBool(*sel(o)) },
	}
}

func decField(name string, sel func(*entity.Opportunity) *decimal.Decimal) fieldHandler {
	return fieldHandler{
		name:   name,
		equal:  func(a, b *entity.Opportunity) bool { return sel(a).Equal(*sel(b)) },
		copyTo: func(dst, src *entity.Opportunity) { *sel(dst) = *sel(src) },
		render: func(o *entity.Opportunity) string { return sel(o).String() },
	}
}

func dateField(name string, sel func(*entity.Opportunity) **time.Time) fieldHandler {
	return fieldHandler{
		name:   name,
		equal:  func(a, b *entity.Opportunity) bool { return equalTime(*sel(a), *sel(b)) },
		copyTo: func(dst, src *entity.Opportunity) { *sel(dst) = cloneTime(*sel(src)) },
		render: func(o *entity.Opportunity) string {
			if t := *sel(o); t != nil {
				return t.Format("2006-01-02")
			}
			return ""
		},
	}
}

func listField(name string, sel func(*entity.Opportunity) *[]string) fieldHandler {
	return fieldHandler{
		name:   name,
		equal:  func(a, b *entity.Opportunity) bool { return equalStrings(*sel(a), *sel(b)) },
		copyTo: func(dst, src *entity.Opportunity) { *sel(dst) = append([]string(nil), *sel(src)...) },
		render: func(o *entity.Opportunity) string { return strings.Join(*sel(o), ", ") },
	}
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneRecord(o *entity.Opportunity) *entity.Opportunity {
	c := *o
	c.Blockers = append([]string(nil), o.Blockers...)
	c.ActionItems = append([]string(nil), o.ActionItems...)
	c.Milestones.ProposalDate = cloneTime(o.Milestones.ProposalDate)
	c.Milestones.PODate = cloneTime(o.Milestones.PODate)
	c.Milestones.KickoffDate = cloneTime(o.Milestones.KickoffDate)
	c.Milestones.InvoiceDate = cloneTime(o.Milestones.InvoiceDate)
	c.Milestones.PaymentDate = cloneTime(o.Milestones.PaymentDate)
	c.Milestones.RevenueDate = cloneTime(o.Milestones.RevenueDate)
	c.Milestones.ClosingDate = cloneTime(o.Milestones.ClosingDate)
	c.DeletedAt = cloneTime(o.DeletedAt)
	return &c
}
