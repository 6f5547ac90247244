package currency

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// How a conversion obtained its rate. Persisted on the opportunity so
// consumers can tell a live conversion from a fallback.
const (
	SourceBase        = "base"        // amount already in the base currency
	SourceLive        = "live"        // rate within the freshness window
	SourceCached      = "cached"      // rate older than fresh but inside the fallback boundary
	SourceFallback    = "fallback"    // rate past the fallback boundary, used with a staleness flag
	SourceUnsupported = "unsupported" // no rate at all, amount passed through unconverted
	SourceManual      = "manual"      // administrator-supplied rate, store untouched
)

// Defaults for the freshness policy and the base currency.
const (
	DefaultBase      = "SGD"
	DefaultFreshDays = 7
	DefaultStaleDays = 90
)

// Result of one conversion. Amount is unrounded; round only at display
// boundaries so repeated conversions do not compound rounding error.
type Result struct {
	Amount   decimal.Decimal
	Source   string
	RateUsed decimal.Decimal // zero when no rate was applied
	Warning  string          // staleness / unsupported note, empty if clean
}

// Config tunes a Converter. Zero values fall back to the defaults.
type Config struct {
	BaseCurrency string
	FreshDays    int
	StaleDays    int
}

// Converter normalizes amounts into the base currency from the store's
// current snapshot, applying the freshness and fallback policy.
type Converter struct {
	store     *Store
	base      string
	freshDays int
	staleDays int
}

// NewConverter builds a converter over the given store.
func NewConverter(store *Store, cfg Config) *Converter {
	if cfg.BaseCurrency == "" {
		cfg.BaseCurrency = DefaultBase
	}
	if cfg.FreshDays <= 0 {
		cfg.FreshDays = DefaultFreshDays
	}
	if cfg.StaleDays <= 0 {
		cfg.StaleDays = DefaultStaleDays
	}
	return &Converter{
		store:     store,
		base:      strings.ToUpper(cfg.BaseCurrency),
		freshDays: cfg.FreshDays,
		staleDays: cfg.StaleDays,
	}
}

// Base returns the base currency code.
func (c *Converter) Base() string {
	return c.base
}

// Convert normalizes amount from the given currency into the base currency.
// today decides rate staleness; callers pass the same clock they evaluate
// with. An unknown currency never produces an error: the amount is passed
// through unconverted with Source unsupported and a recoverable warning.
func (c *Converter) Convert(amount decimal.Decimal, from string, today time.Time) Result {
	from = strings.ToUpper(strings.TrimSpace(from))
	if from == c.base {
		return Result{Amount: amount, Source: SourceBase}
	}

	r, ok := c.store.Lookup(from)
	if !ok {
		return Result{
			Amount:  amount,
			Source:  SourceUnsupported,
			Warning: fmt.Sprintf("no exchange rate known for %s, amount kept in local currency", from),
		}
	}

	age := AgeDays(r.FetchedAt, today)
	converted := amount.Mul(r.ToBase)
	switch {
	case age <= c.freshDays:
		return Result{Amount: converted, Source: SourceLive, RateUsed: r.ToBase}
	case age <= c.staleDays:
		return Result{
			Amount:   converted,
			Source:   SourceCached,
			RateUsed: r.ToBase,
			Warning:  fmt.Sprintf("rate for %s is %d days old", from, age),
		}
	default:
		return Result{
			Amount:   converted,
			Source:   SourceFallback,
			RateUsed: r.ToBase,
			Warning:  fmt.Sprintf("rate for %s is %d days old, past the %d-day fallback boundary", from, age, c.staleDays),
		}
	}
}

// ConvertWithRate applies an administrator-supplied rate for this conversion
// only. The store is neither consulted nor mutated.
func (c *Converter) ConvertWithRate(amount, rate decimal.Decimal) Result {
	return Result{Amount: amount.Mul(rate), Source: SourceManual, RateUsed: rate}
}

// Display rounds a stored amount for external presentation: two decimals,
// half up.
func Display(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// AgeDays is the whole-day age of a rate relative to today, never negative.
func AgeDays(fetchedAt, today time.Time) int {
	fa := time.Date(fetchedAt.Year(), fetchedAt.Month(), fetchedAt.Day(), 0, 0, 0, 0, time.UTC)
	td := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	d := int(td.Sub(fa).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
