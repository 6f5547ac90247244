package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Origins of a stored exchange rate.
const (
	RateOriginProvider = "provider" // fetched from the upstream feed
	RateOriginSeed     = "seed"     // loaded by the seed command
)

// ExchangeRate is one append-only rate row. RateToBase is the multiplicative
// factor to the base currency: amount_base = amount_local * RateToBase.
// Rows are never mutated after insertion; the newest row per currency is the
// current rate, older rows are audit history.
type ExchangeRate struct {
	ID         string
	Currency   string // ISO 4217 alpha code
	RateToBase decimal.Decimal
	FetchedAt  time.Time
	Origin     string
	CreatedAt  time.Time
}
