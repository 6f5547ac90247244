package repository

import (
	"time"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
)

// ExchangeRateRepository is the persistence port for the append-only rate
// history. Rows are never updated in place.
type ExchangeRateRepository interface {
	Insert(rate *entity.ExchangeRate) error
	// Latest returns the newest stored rate per currency, for warming the
	// in-memory cache at startup.
	Latest() ([]*entity.ExchangeRate, error)
	// PurgeOlderThan removes history rows fetched before cutoff, always
	// keeping the newest row per currency so the fallback rate survives.
	PurgeOlderThan(cutoff time.Time) (int64, error)
}
