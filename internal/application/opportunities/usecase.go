// Package opportunities serves read access to the synced opportunity set.
// All fields are precomputed by the sync pass; nothing is evaluated here.
package opportunities

import (
	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/dto"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/repository"
)

// UseCase is the read side over the opportunity store.
type UseCase struct {
	oppRepo repository.OpportunityRepository
}

// NewUseCase builds the use case.
func NewUseCase(oppRepo repository.OpportunityRepository) *UseCase {
	return &UseCase{oppRepo: oppRepo}
}

// List returns a page of active opportunities; with onlyAttention set, just
// the ones flagged red or blocked.
func (uc *UseCase) List(onlyAttention bool, limit, offset int) ([]dto.OpportunityResponse, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	var (
		opps []*entity.Opportunity
		err  error
	)
	if onlyAttention {
		opps, err = uc.oppRepo.ListRequiringAttention(limit, offset)
	} else {
		opps, err = uc.oppRepo.List(limit, offset)
	}
	if err != nil {
		return nil, err
	}
	out := make([]dto.OpportunityResponse, len(opps))
	for i, o := range opps {
		out[i] = dto.NewOpportunityResponse(o)
	}
	return out, nil
}

// GetByID returns one opportunity, soft-deleted ones included so reviewers
// can inspect deletion conflicts.
func (uc *UseCase) GetByID(id string) (*dto.OpportunityResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	o, err := uc.oppRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	resp := dto.NewOpportunityResponse(o)
	return &resp, nil
}
