package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/repository"
)

var _ repository.ExchangeRateRepository = (*ExchangeRateRepo)(nil)

// ExchangeRateRepo implements ExchangeRateRepository on PostgreSQL. The table
// is append-only; rows are inserted and purged, never updated.
type ExchangeRateRepo struct {
	q Querier
}

// NewExchangeRateRepository builds the persistence adapter. Pass a pool or tx (Querier).
func NewExchangeRateRepository(q Querier) *ExchangeRateRepo {
	return &ExchangeRateRepo{q: q}
}

// Insert appends one rate row.
func (r *ExchangeRateRepo) Insert(rate *entity.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (id, currency, rate_to_base, fetched_at, origin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		rate.ID, rate.Currency, rate.RateToBase, rate.FetchedAt, rate.Origin, rate.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert exchange rate: %w", err)
	}
	return nil
}

// Latest returns the newest row per currency, for warming the in-memory cache
// at startup.
func (r *ExchangeRateRepo) Latest() ([]*entity.ExchangeRate, error) {
	query := `
		SELECT DISTINCT ON (currency) id, currency, rate_to_base, fetched_at, origin, created_at
		FROM exchange_rates
		ORDER BY currency, fetched_at DESC`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("latest exchange rates: %w", err)
	}
	defer rows.Close()
	var list []*entity.ExchangeRate
	for rows.Next() {
		var e entity.ExchangeRate
		if err := rows.Scan(&e.ID, &e.Currency, &e.RateToBase, &e.FetchedAt, &e.Origin, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exchange rate: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// PurgeOlderThan deletes history rows fetched before the cutoff. The newest
// row per currency always survives, however old, so the cache can still warm
// up after a long provider outage.
func (r *ExchangeRateRepo) PurgeOlderThan(cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM exchange_rates
		WHERE fetched_at < $1
		  AND id NOT IN (
			SELECT DISTINCT ON (currency) id
			FROM exchange_rates
			ORDER BY currency, fetched_at DESC
		  )`
	cmd, err := r.q.Exec(context.Background(), query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge exchange rates: %w", err)
	}
	return cmd.RowsAffected(), nil
}
