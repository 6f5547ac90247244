package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Health signals (at-a-glance risk classification of a deal).
const (
	SignalGreen       = "green"        // on track
	SignalYellow      = "yellow"       // at risk, watch
	SignalRed         = "red"          // needs intervention
	SignalBlocked     = "blocked"      // external blocker reported
	SignalNeedsUpdate = "needs_update" // record invalid, pending correction
)

// O2R phases (Opportunity-to-Revenue lifecycle).
const (
	PhaseOpportunity = 1
	PhaseProposal    = 2
	PhaseExecution   = 3
	PhaseRevenue     = 4
)

// Opportunity is the mutable aggregate owned by the sync pipeline.
// AmountBase, HealthSignal, HealthReason and RequiresAttention are derived
// fields, regenerated on every evaluation and never hand-edited.
type Opportunity struct {
	ID            string
	DealName      string
	Owner         string
	Territory     string
	AmountLocal   decimal.Decimal
	LocalCurrency string // ISO 4217 alpha code
	AmountBase    decimal.Decimal
	Probability   int // 0..100
	Phase         int // 1..4, monotonically non-decreasing except reason-logged regression

	HealthSignal      string
	HealthReason      string
	RequiresAttention bool

	Milestones  MilestoneTimeline
	Blockers    []string
	ActionItems []string

	ConversionSource string          // how AmountBase was obtained (see currency package)
	RateUsed         decimal.Decimal // rate applied on the last conversion, zero if none
	RateWarning      string          // staleness / unsupported-currency note, empty if clean

	LastModifiedLocal  time.Time
	LastModifiedRemote time.Time
	UpdatedBy          string

	DeletedAt *time.Time // soft delete marker; purged after the retention window
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Deleted reports whether the record is soft-deleted.
func (o *Opportunity) Deleted() bool {
	return o.DeletedAt != nil
}
