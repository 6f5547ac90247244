package review

import (
	"context"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/repository"
)

// TxRunner executes fn inside one database transaction so the decided
// conflict and the re-evaluated opportunity land together.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		oppRepo repository.OpportunityRepository,
		conflictRepo repository.ConflictRepository,
	) error) error
}
