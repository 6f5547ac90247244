package dto

import (
	"time"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
)

// ConflictResponse is one conflict for GET /api/v1/conflicts.
type ConflictResponse struct {
	ID               string     `json:"id"`
	OpportunityID    string     `json:"opportunity_id"`
	FieldName        string     `json:"field_name"`
	LocalValue       string     `json:"local_value"`
	RemoteValue      string     `json:"remote_value"`
	LocalModifiedAt  time.Time  `json:"local_modified_at"`
	RemoteModifiedAt time.Time  `json:"remote_modified_at"`
	Resolution       string     `json:"resolution"`
	Reason           string     `json:"reason,omitempty"`
	DetectedAt       time.Time  `json:"detected_at"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy       string     `json:"resolved_by,omitempty"`
	ResolutionNote   string     `json:"resolution_note,omitempty"`
}

// ConflictDecisionRequest is the body for POST /api/v1/conflicts/:id/decision.
// Note is mandatory when accepting a phase regression.
type ConflictDecisionRequest struct {
	Decision  string `json:"decision"` // keep_local|accept_remote
	DecidedBy string `json:"decided_by"`
	Note      string `json:"note,omitempty"`
}

// ConflictDecisionResponse returns the settled conflict together with the
// re-evaluated opportunity.
type ConflictDecisionResponse struct {
	Conflict    ConflictResponse    `json:"conflict"`
	Opportunity OpportunityResponse `json:"opportunity"`
}

// NewConflictResponse maps a conflict record to its HTTP view.
func NewConflictResponse(c *entity.ConflictRecord) ConflictResponse {
	return ConflictResponse{
		ID:               c.ID,
		OpportunityID:    c.OpportunityID,
		FieldName:        c.FieldName,
		LocalValue:       c.LocalValue,
		RemoteValue:      c.RemoteValue,
		LocalModifiedAt:  c.LocalModifiedAt,
		RemoteModifiedAt: c.RemoteModifiedAt,
		Resolution:       c.Resolution,
		Reason:           c.Reason,
		DetectedAt:       c.DetectedAt,
		ResolvedAt:       c.ResolvedAt,
		ResolvedBy:       c.ResolvedBy,
		ResolutionNote:   c.ResolutionNote,
	}
}
