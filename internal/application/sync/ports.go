package sync

import (
	"context"
	"time"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/repository"
)

// RemoteRecord is one CRM opportunity as fetched from the gateway, with the
// modification stamps the CRM exposes. FieldTimes may carry real per-field
// stamps or the record stamp repeated for every syncable field.
type RemoteRecord struct {
	Opportunity *entity.Opportunity
	FieldTimes  map[string]time.Time
	ModifiedAt  time.Time
}

// CRMGateway fetches opportunity changes from the CRM. Implementations page
// internally and return the full changed set.
type CRMGateway interface {
	FetchChanged(ctx context.Context, since time.Time) ([]RemoteRecord, error)
}

// TxRunner executes fn inside one database transaction, passing repositories
// bound to that transaction. One record's merge, conflict rows and counters
// land atomically or not at all.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		oppRepo repository.OpportunityRepository,
		conflictRepo repository.ConflictRepository,
	) error) error
}
