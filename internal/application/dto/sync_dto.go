package dto

import (
	"time"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
)

// SyncRunResponse is one sync pass for POST/GET /api/v1/sync/runs.
type SyncRunResponse struct {
	ID               string     `json:"id"`
	Trigger          string     `json:"trigger"` // manual|scheduled
	Status           string     `json:"status"`  // running|completed|failed
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	RecordsTotal     int        `json:"records_total"`
	RecordsResolved  int        `json:"records_resolved"`
	ConflictsPending int        `json:"conflicts_pending"`
	RecordsFailed    int        `json:"records_failed"`
	Error            string     `json:"error,omitempty"`
}

// NewSyncRunResponse maps a sync run to its HTTP view.
func NewSyncRunResponse(r *entity.SyncRun) SyncRunResponse {
	return SyncRunResponse{
		ID:               r.ID,
		Trigger:          r.Trigger,
		Status:           r.Status,
		StartedAt:        r.StartedAt,
		FinishedAt:       r.FinishedAt,
		RecordsTotal:     r.RecordsTotal,
		RecordsResolved:  r.RecordsResolved,
		ConflictsPending: r.ConflictsPending,
		RecordsFailed:    r.RecordsFailed,
		Error:            r.Error,
	}
}
