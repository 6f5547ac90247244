package entity

import "time"

// Sync run states.
const (
	SyncRunRunning   = "running"
	SyncRunCompleted = "completed"
	SyncRunFailed    = "failed"
)

// What started a run (sync pass or rate refresh).
const (
	TriggerManual    = "manual"    // administrator request
	TriggerScheduled = "scheduled" // cron
)

// SyncRun is the audit record of one coordinator pass over the CRM delta.
type SyncRun struct {
	ID         string
	Trigger    string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string

	RecordsTotal     int
	RecordsResolved  int
	ConflictsPending int
	RecordsFailed    int
	Error            string
}
