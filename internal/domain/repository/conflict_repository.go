package repository

import (
	"time"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
)

// ConflictRepository is the persistence port for manual-review conflicts.
// Only manual_pending records reach storage; auto-resolved outcomes live in
// the sync run counters.
type ConflictRepository interface {
	Create(c *entity.ConflictRecord) error
	// GetByID returns (nil, nil) when the record does not exist.
	GetByID(id string) (*entity.ConflictRecord, error)
	ListPending(limit, offset int) ([]*entity.ConflictRecord, error)
	// Update persists the review outcome: resolution, resolved_at,
	// resolved_by and the reviewer note.
	Update(c *entity.ConflictRecord) error
	PurgeResolvedBefore(cutoff time.Time) (int64, error)
}
