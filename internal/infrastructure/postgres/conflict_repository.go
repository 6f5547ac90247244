package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/repository"
)

var _ repository.ConflictRepository = (*ConflictRepo)(nil)

const conflictColumns = `id, opportunity_id, field_name, local_value, remote_value,
	local_modified_at, remote_modified_at, resolution, reason,
	detected_at, resolved_at, resolved_by, resolution_note`

// ConflictRepo implements ConflictRepository on PostgreSQL (usable with pool or tx).
type ConflictRepo struct {
	q Querier
}

// NewConflictRepository builds the persistence adapter. Pass a pool or tx (Querier).
func NewConflictRepository(q Querier) *ConflictRepo {
	return &ConflictRepo{q: q}
}

// Create persists one manual_pending conflict detected by a sync pass.
func (r *ConflictRepo) Create(c *entity.ConflictRecord) error {
	query := `
		INSERT INTO conflict_records (` + conflictColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		c.ID, c.OpportunityID, c.FieldName, c.LocalValue, c.RemoteValue,
		c.LocalModifiedAt, c.RemoteModifiedAt, c.Resolution, c.Reason,
		c.DetectedAt, c.ResolvedAt, c.ResolvedBy, c.ResolutionNote,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert conflict: %w", err)
	}
	return nil
}

// GetByID returns one conflict, (nil, nil) when missing.
func (r *ConflictRepo) GetByID(id string) (*entity.ConflictRecord, error) {
	query := `SELECT ` + conflictColumns + ` FROM conflict_records WHERE id = $1`
	c, err := scanConflict(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conflict: %w", err)
	}
	return c, nil
}

// ListPending returns a page of undecided conflicts, oldest detection first
// so the review queue drains in arrival order.
func (r *ConflictRepo) ListPending(limit, offset int) ([]*entity.ConflictRecord, error) {
	query := `SELECT ` + conflictColumns + `
		FROM conflict_records
		WHERE resolution = $1 AND resolved_at IS NULL
		ORDER BY detected_at LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, entity.ResolutionManualPending, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list pending conflicts: %w", err)
	}
	defer rows.Close()
	var list []*entity.ConflictRecord
	for rows.Next() {
		c, err := scanConflict(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conflict: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Update persists a review decision: resolution, timestamps and note.
func (r *ConflictRepo) Update(c *entity.ConflictRecord) error {
	query := `
		UPDATE conflict_records
		SET resolution = $2, resolved_at = $3, resolved_by = $4, resolution_note = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		c.ID, c.Resolution, c.ResolvedAt, c.ResolvedBy, c.ResolutionNote,
	)
	if err != nil {
		return fmt.Errorf("update conflict: %w", err)
	}
	return nil
}

// PurgeResolvedBefore hard-deletes conflicts settled before the cutoff.
// Pending conflicts are never purged.
func (r *ConflictRepo) PurgeResolvedBefore(cutoff time.Time) (int64, error) {
	cmd, err := r.q.Exec(context.Background(),
		`DELETE FROM conflict_records WHERE resolved_at IS NOT NULL AND resolved_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge conflicts: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func scanConflict(row pgx.Row) (*entity.ConflictRecord, error) {
	var c entity.ConflictRecord
	err := row.Scan(
		&c.ID, &c.OpportunityID, &c.FieldName, &c.LocalValue, &c.RemoteValue,
		&c.LocalModifiedAt, &c.RemoteModifiedAt, &c.Resolution, &c.Reason,
		&c.DetectedAt, &c.ResolvedAt, &c.ResolvedBy, &c.ResolutionNote,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
