package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/repository"
)

var _ repository.SyncRunRepository = (*SyncRunRepo)(nil)

const syncRunColumns = `id, trigger_source, started_at, finished_at, status,
	records_total, records_resolved, conflicts_pending, records_failed, error`

// SyncRunRepo implements SyncRunRepository on PostgreSQL (usable with pool or tx).
type SyncRunRepo struct {
	q Querier
}

// NewSyncRunRepository builds the persistence adapter. Pass a pool or tx (Querier).
func NewSyncRunRepository(q Querier) *SyncRunRepo {
	return &SyncRunRepo{q: q}
}

// Create persists the run row at pass start, in running state.
func (r *SyncRunRepo) Create(run *entity.SyncRun) error {
	query := `
		INSERT INTO sync_runs (` + syncRunColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		run.ID, run.Trigger, run.StartedAt, run.FinishedAt, run.Status,
		run.RecordsTotal, run.RecordsResolved, run.ConflictsPending, run.RecordsFailed, run.Error,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sync run: %w", err)
	}
	return nil
}

// Update rewrites counters and terminal state when the pass finishes.
func (r *SyncRunRepo) Update(run *entity.SyncRun) error {
	query := `
		UPDATE sync_runs
		SET finished_at = $2, status = $3, records_total = $4, records_resolved = $5,
		    conflicts_pending = $6, records_failed = $7, error = $8
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		run.ID, run.FinishedAt, run.Status, run.RecordsTotal, run.RecordsResolved,
		run.ConflictsPending, run.RecordsFailed, run.Error,
	)
	if err != nil {
		return fmt.Errorf("update sync run: %w", err)
	}
	return nil
}

// GetByID returns one run, (nil, nil) when missing.
func (r *SyncRunRepo) GetByID(id string) (*entity.SyncRun, error) {
	query := `SELECT ` + syncRunColumns + ` FROM sync_runs WHERE id = $1`
	run, err := scanSyncRun(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sync run: %w", err)
	}
	return run, nil
}

// ListRecent returns the newest runs first.
func (r *SyncRunRepo) ListRecent(limit int) ([]*entity.SyncRun, error) {
	query := `SELECT ` + syncRunColumns + `
		FROM sync_runs ORDER BY started_at DESC LIMIT $1`
	rows, err := r.q.Query(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	defer rows.Close()
	var list []*entity.SyncRun
	for rows.Next() {
		run, err := scanSyncRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sync run: %w", err)
		}
		list = append(list, run)
	}
	return list, rows.Err()
}

// LastCompleted returns the newest completed run, (nil, nil) when none exists.
// Its start time is the change watermark for the next pass.
func (r *SyncRunRepo) LastCompleted() (*entity.SyncRun, error) {
	query := `SELECT ` + syncRunColumns + `
		FROM sync_runs WHERE status = $1 ORDER BY started_at DESC LIMIT 1`
	run, err := scanSyncRun(r.q.QueryRow(context.Background(), query, entity.SyncRunCompleted))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last completed sync run: %w", err)
	}
	return run, nil
}

func scanSyncRun(row pgx.Row) (*entity.SyncRun, error) {
	var run entity.SyncRun
	err := row.Scan(
		&run.ID, &run.Trigger, &run.StartedAt, &run.FinishedAt, &run.Status,
		&run.RecordsTotal, &run.RecordsResolved, &run.ConflictsPending, &run.RecordsFailed, &run.Error,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
