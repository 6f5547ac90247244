package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateResponse is one cached exchange rate for GET /api/v1/rates.
type RateResponse struct {
	Currency   string          `json:"currency"`
	RateToBase decimal.Decimal `json:"rate_to_base"`
	FetchedAt  time.Time       `json:"fetched_at"`
	AgeDays    int             `json:"age_days"`
	State      string          `json:"state"` // live|cached|fallback
}

// RatesSnapshotResponse is the full cache view.
type RatesSnapshotResponse struct {
	BaseCurrency string         `json:"base_currency"`
	Rates        []RateResponse `json:"rates"`
}

// RefreshRatesResponse summarizes one provider refresh.
type RefreshRatesResponse struct {
	Fetched   int       `json:"fetched"`
	Accepted  int       `json:"accepted"`
	Skipped   int       `json:"skipped"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ConvertRequest is the body for POST /api/v1/rates/convert. A non-zero Rate
// is applied as a one-off manual rate and bypasses the cache.
type ConvertRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Rate     decimal.Decimal `json:"rate"`
}

// ConvertResponse carries the normalized amount plus conversion provenance.
type ConvertResponse struct {
	Amount        decimal.Decimal `json:"amount"`
	AmountDisplay decimal.Decimal `json:"amount_display"`
	BaseCurrency  string          `json:"base_currency"`
	Source        string          `json:"source"`
	RateUsed      decimal.Decimal `json:"rate_used"`
	Warning       string          `json:"warning,omitempty"`
}
