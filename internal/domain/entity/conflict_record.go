package entity

import "time"

// Conflict resolutions produced by a sync pass.
const (
	ResolutionCRMWins       = "crm_wins"       // remote value applied
	ResolutionLocalWins     = "local_wins"     // local value kept
	ResolutionMerged        = "merged"         // both sides combined (list fields)
	ResolutionManualPending = "manual_pending" // deferred to human review
)

// Review decisions applicable to a manual_pending conflict.
const (
	DecisionKeepLocal    = "keep_local"
	DecisionAcceptRemote = "accept_remote"
)

// ConflictRecord captures one field-level divergence between the local and
// the remote copy of an opportunity. Created transiently during a sync pass;
// persisted only when Resolution is manual_pending.
type ConflictRecord struct {
	ID               string
	OpportunityID    string
	FieldName        string
	LocalValue       string
	RemoteValue      string
	LocalModifiedAt  time.Time
	RemoteModifiedAt time.Time
	Resolution       string
	Reason           string // why the resolver chose this outcome

	DetectedAt     time.Time
	ResolvedAt     *time.Time
	ResolvedBy     string
	ResolutionNote string
}

// Pending reports whether the conflict still awaits a review decision.
func (c *ConflictRecord) Pending() bool {
	return c.Resolution == ResolutionManualPending && c.ResolvedAt == nil
}
