package rates

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ProviderRate is one quote from the feed, already expressed as base units
// per one unit of Currency (multiplicative toward the base).
type ProviderRate struct {
	Currency   string
	RateToBase decimal.Decimal
	AsOf       time.Time
}

// RateProvider fetches the current quote set from the external feed.
type RateProvider interface {
	Fetch(ctx context.Context) ([]ProviderRate, error)
}
