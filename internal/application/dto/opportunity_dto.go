package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// MilestoneTimelineDTO renders the O2R milestone dates as yyyy-mm-dd strings.
type MilestoneTimelineDTO struct {
	ProposalDate  string `json:"proposal_date,omitempty"`
	PODate        string `json:"po_date,omitempty"`
	KickoffDate   string `json:"kickoff_date,omitempty"`
	InvoiceDate   string `json:"invoice_date,omitempty"`
	PaymentDate   string `json:"payment_date,omitempty"`
	RevenueDate   string `json:"revenue_date,omitempty"`
	ClosingDate   string `json:"closing_date,omitempty"`
	Blocked       bool   `json:"blocked"`
	BlockedReason string `json:"blocked_reason,omitempty"`
}

// OpportunityResponse is the full opportunity view for GET /api/v1/opportunities.
// amount_base carries the unrounded normalized value; amount_base_display is
// rounded to cents for presentation.
type OpportunityResponse struct {
	ID            string          `json:"id"`
	DealName      string          `json:"deal_name"`
	Owner         string          `json:"owner"`
	Territory     string          `json:"territory"`
	AmountLocal   decimal.Decimal `json:"amount_local"`
	LocalCurrency string          `json:"local_currency"`
	AmountBase    decimal.Decimal `json:"amount_base"`
	BaseDisplay   decimal.Decimal `json:"amount_base_display"`
	Probability   int             `json:"probability"`
	Phase         int             `json:"phase"`

	HealthSignal      string `json:"health_signal"`
	HealthReason      string `json:"health_reason"`
	RequiresAttention bool   `json:"requires_attention"`

	Milestones  MilestoneTimelineDTO `json:"milestones"`
	Blockers    []string             `json:"blockers,omitempty"`
	ActionItems []string             `json:"action_items,omitempty"`

	ConversionSource string          `json:"conversion_source,omitempty"`
	RateUsed         decimal.Decimal `json:"rate_used"`
	RateWarning      string          `json:"rate_warning,omitempty"`

	LastModifiedLocal  time.Time  `json:"last_modified_local"`
	LastModifiedRemote time.Time  `json:"last_modified_remote"`
	UpdatedBy          string     `json:"updated_by,omitempty"`
	UpdatedAt          time.Time  `json:"updated_at"`
	DeletedAt          *time.Time `json:"deleted_at,omitempty"`
}

// NewOpportunityResponse maps the aggregate to its HTTP view.
func NewOpportunityResponse(o *entity.Opportunity) OpportunityResponse {
	return OpportunityResponse{
		ID:                 o.ID,
		DealName:           o.DealName,
		Owner:              o.Owner,
		Territory:          o.Territory,
		AmountLocal:        o.AmountLocal,
		LocalCurrency:      o.LocalCurrency,
		AmountBase:         o.AmountBase,
		BaseDisplay:        o.AmountBase.Round(2),
		Probability:        o.Probability,
		Phase:              o.Phase,
		HealthSignal:       o.HealthSignal,
		HealthReason:       o.HealthReason,
		RequiresAttention:  o.RequiresAttention,
		Milestones:         newTimelineDTO(o.Milestones),
		Blockers:           o.Blockers,
		ActionItems:        o.ActionItems,
		ConversionSource:   o.ConversionSource,
		RateUsed:           o.RateUsed,
		RateWarning:        o.RateWarning,
		LastModifiedLocal:  o.LastModifiedLocal,
		LastModifiedRemote: o.LastModifiedRemote,
		UpdatedBy:          o.UpdatedBy,
		UpdatedAt:          o.UpdatedAt,
		DeletedAt:          o.DeletedAt,
	}
}

func newTimelineDTO(t entity.MilestoneTimeline) MilestoneTimelineDTO {
	return MilestoneTimelineDTO{
		ProposalDate:  formatDate(t.ProposalDate),
		PODate:        formatDate(t.PODate),
		KickoffDate:   formatDate(t.KickoffDate),
		InvoiceDate:   formatDate(t.InvoiceDate),
		PaymentDate:   formatDate(t.PaymentDate),
		RevenueDate:   formatDate(t.RevenueDate),
		ClosingDate:   formatDate(t.ClosingDate),
		Blocked:       t.Blocked,
		BlockedReason: t.BlockedReason,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
