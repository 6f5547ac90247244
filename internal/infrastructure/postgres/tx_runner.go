package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/review"
	appsync "github.com/jrkphani/pipeline-pulse-sub004/internal/application/sync"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/repository"
)

// Ensure TxRunner implements the sync and review transaction ports.
var _ appsync.TxRunner = (*TxRunner)(nil)
var _ review.TxRunner = (*TxRunner)(nil)

// TxRunner executes callbacks inside one PostgreSQL transaction, so a merged
// opportunity and its pending conflicts commit or roll back together.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner builds the runner over the pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run begins a transaction, executes fn with repositories bound to the tx and
// commits, or rolls back when fn errors.
func (r *TxRunner) Run(ctx context.Context, fn func(
	oppRepo repository.OpportunityRepository,
	conflictRepo repository.ConflictRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	oppRepo := NewOpportunityRepository(tx)
	conflictRepo := NewConflictRepository(tx)

	if err := fn(oppRepo, conflictRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
