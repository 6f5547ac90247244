package repository

import "github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"

// SyncRunRepository is the persistence port for sync run bookkeeping.
type SyncRunRepository interface {
	Create(r *entity.SyncRun) error
	// Update persists the terminal state: status, counters, finished_at, error.
	Update(r *entity.SyncRun) error
	// GetByID returns (nil, nil) when the run does not exist.
	GetByID(id string) (*entity.SyncRun, error)
	ListRecent(limit int) ([]*entity.SyncRun, error)
	// LastCompleted returns the newest run with status completed, or
	// (nil, nil) when no run ever completed. Its start time is the
	// change watermark for the next pass.
	LastCompleted() (*entity.SyncRun, error)
}
