package repository

import (
	"time"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
)

// OpportunityRepository is the persistence port for the opportunity aggregate.
// Listings exclude soft-deleted rows; GetByID returns them so the sync pass
// can arbitrate deletion conflicts.
type OpportunityRepository interface {
	Create(o *entity.Opportunity) error
	Update(o *entity.Opportunity) error
	// GetByID returns (nil, nil) when the record does not exist.
	GetByID(id string) (*entity.Opportunity, error)
	List(limit, offset int) ([]*entity.Opportunity, error)
	ListRequiringAttention(limit, offset int) ([]*entity.Opportunity, error)
	// PurgeDeletedBefore hard-deletes rows soft-deleted before cutoff and
	// returns how many were removed.
	PurgeDeletedBefore(cutoff time.Time) (int64, error)
}
