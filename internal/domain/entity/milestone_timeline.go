package entity

import "time"

// Canonical milestone names in O2R order.
const (
	MilestoneProposal = "proposal"
	MilestonePO       = "po"
	MilestoneKickoff  = "kickoff"
	MilestoneInvoice  = "invoice"
	MilestonePayment  = "payment"
	MilestoneRevenue  = "revenue"
)

// MilestoneTimeline holds the dated milestones of one opportunity.
// Dates are optional; where two are present they must be non-decreasing in
// canonical order. Violations are reported by the evaluator, never corrected.
type MilestoneTimeline struct {
	ProposalDate *time.Time
	PODate       *time.Time
	KickoffDate  *time.Time
	InvoiceDate  *time.Time
	PaymentDate  *time.Time
	RevenueDate  *time.Time

	ClosingDate *time.Time // expected close, not part of the canonical chain

	Blocked       bool
	BlockedReason string
}

// Milestone is one named, optionally dated point of a timeline.
type Milestone struct {
	Name string
	Date *time.Time
}

// Ordered returns the six canonical milestones in O2R order, set or not.
func (t MilestoneTimeline) Ordered() []Milestone {
	return []Milestone{
		{MilestoneProposal, t.ProposalDate},
		{MilestonePO, t.PODate},
		{MilestoneKickoff, t.KickoffDate},
		{MilestoneInvoice, t.InvoiceDate},
		{MilestonePayment, t.PaymentDate},
		{MilestoneRevenue, t.RevenueDate},
	}
}
