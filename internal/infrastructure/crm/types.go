package crm

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wire types of the CRM delta API. Dates are yyyy-mm-dd strings, stamps are
// RFC 3339. field_times is optional; when the CRM omits it the record stamp
// stands in for every field.

type changedResponse struct {
	Records []remoteOpportunity `json:"records"`
	More    bool                `json:"more"`
}

type remoteOpportunity struct {
	ID            string          `json:"id"`
	DealName      string          `json:"deal_name"`
	Owner         string          `json:"owner"`
	Territory     string          `json:"territory"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Probability   int             `json:"probability"`
	Phase         int             `json:"phase"`
	ProposalDate  string          `json:"proposal_date,omitempty"`
	PODate        string          `json:"po_date,omitempty"`
	KickoffDate   string          `json:"kickoff_date,omitempty"`
	InvoiceDate   string          `json:"invoice_date,omitempty"`
	PaymentDate   string          `json:"payment_date,omitempty"`
	RevenueDate   string          `json:"revenue_date,omitempty"`
	ClosingDate   string          `json:"closing_date,omitempty"`
	Blocked       bool            `json:"blocked"`
	BlockedReason string          `json:"blocked_reason,omitempty"`
	Blockers      []string        `json:"blockers,omitempty"`
	ActionItems   []string        `json:"action_items,omitempty"`
	Deleted       bool            `json:"deleted"`

	ModifiedAt time.Time            `json:"modified_at"`
	FieldTimes map[string]time.Time `json:"field_times,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
