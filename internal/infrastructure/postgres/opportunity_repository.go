package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/repository"
)

var _ repository.OpportunityRepository = (*OpportunityRepo)(nil)

// opportunityColumns is the full column list, in struct order. Insert, update
// and scan all follow it; keep the three in step when adding a column.
const opportunityColumns = `id, deal_name, owner, territory, amount_local, local_currency, amount_base,
	probability, phase, health_signal, health_reason, requires_attention,
	proposal_date, po_date, kickoff_date, invoice_date, payment_date, revenue_date, closing_date,
	blocked, blocked_reason, blockers, action_items,
	conversion_source, rate_used, rate_warning,
	last_modified_local, last_modified_remote, updated_by,
	deleted_at, created_at, updated_at`

// OpportunityRepo implements OpportunityRepository on PostgreSQL (usable with pool or tx).
type OpportunityRepo struct {
	q Querier
}

// NewOpportunityRepository builds the persistence adapter. Pass a pool or tx (Querier).
func NewOpportunityRepository(q Querier) *OpportunityRepo {
	return &OpportunityRepo{q: q}
}

// Create persists an opportunity adopted from the CRM. IDs are CRM-assigned,
// never generated here.
func (r *OpportunityRepo) Create(o *entity.Opportunity) error {
	query := `
		INSERT INTO opportunities (` + opportunityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		        $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32)`
	_, err := r.q.Exec(context.Background(), query, opportunityArgs(o)...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert opportunity: %w", err)
	}
	return nil
}

// Update rewrites every mutable column. The merged record is the full truth
// after a sync pass, so a column-by-column diff buys nothing. created_at is
// immutable and stays out of the SET list.
func (r *OpportunityRepo) Update(o *entity.Opportunity) error {
	query := `
		UPDATE opportunities
		SET deal_name = $2, owner = $3, territory = $4, amount_local = $5, local_currency = $6,
		    amount_base = $7, probability = $8, phase = $9, health_signal = $10, health_reason = $11,
		    requires_attention = $12, proposal_date = $13, po_date = $14, kickoff_date = $15,
		    invoice_date = $16, payment_date = $17, revenue_date = $18, closing_date = $19,
		    blocked = $20, blocked_reason = $21, blockers = $22, action_items = $23,
		    conversion_source = $24, rate_used = $25, rate_warning = $26,
		    last_modified_local = $27, last_modified_remote = $28, updated_by = $29,
		    deleted_at = $30, updated_at = $31
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		o.ID, o.DealName, o.Owner, o.Territory, o.AmountLocal, o.LocalCurrency,
		o.AmountBase, o.Probability, o.Phase, o.HealthSignal, o.HealthReason,
		o.RequiresAttention, o.Milestones.ProposalDate, o.Milestones.PODate, o.Milestones.KickoffDate,
		o.Milestones.InvoiceDate, o.Milestones.PaymentDate, o.Milestones.RevenueDate, o.Milestones.ClosingDate,
		o.Milestones.Blocked, o.Milestones.BlockedReason, o.Blockers, o.ActionItems,
		o.ConversionSource, o.RateUsed, o.RateWarning,
		o.LastModifiedLocal, o.LastModifiedRemote, o.UpdatedBy,
		o.DeletedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update opportunity: %w", err)
	}
	return nil
}

// GetByID returns one opportunity, soft-deleted included (deletion conflicts
// are arbitrated against the stored row). Missing rows return (nil, nil).
func (r *OpportunityRepo) GetByID(id string) (*entity.Opportunity, error) {
	query := `SELECT ` + opportunityColumns + ` FROM opportunities WHERE id = $1`
	o, err := scanOpportunity(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get opportunity: %w", err)
	}
	return o, nil
}

// List returns a page of active opportunities, most recently synced first.
func (r *OpportunityRepo) List(limit, offset int) ([]*entity.Opportunity, error) {
	query := `SELECT ` + opportunityColumns + `
		FROM opportunities WHERE deleted_at IS NULL ORDER BY updated_at DESC LIMIT $1 OFFSET $2`
	return r.list(query, limit, offset)
}

// ListRequiringAttention returns a page of active red or blocked
// opportunities, biggest base amount first so the worklist leads with the
// money at risk.
func (r *OpportunityRepo) ListRequiringAttention(limit, offset int) ([]*entity.Opportunity, error) {
	query := `SELECT ` + opportunityColumns + `
		FROM opportunities WHERE deleted_at IS NULL AND requires_attention ORDER BY amount_base DESC LIMIT $1 OFFSET $2`
	return r.list(query, limit, offset)
}

func (r *OpportunityRepo) list(query string, limit, offset int) ([]*entity.Opportunity, error) {
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	defer rows.Close()
	var list []*entity.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// PurgeDeletedBefore hard-deletes soft-deleted rows older than the cutoff.
func (r *OpportunityRepo) PurgeDeletedBefore(cutoff time.Time) (int64, error) {
	cmd, err := r.q.Exec(context.Background(),
		`DELETE FROM opportunities WHERE deleted_at IS NOT NULL AND deleted_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge opportunities: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func opportunityArgs(o *entity.Opportunity) []any {
	return []any{
		o.ID, o.DealName, o.Owner, o.Territory, o.AmountLocal, o.LocalCurrency, o.AmountBase,
		o.Probability, o.Phase, o.HealthSignal, o.HealthReason, o.RequiresAttention,
		o.Milestones.ProposalDate, o.Milestones.PODate, o.Milestones.KickoffDate,
		o.Milestones.InvoiceDate, o.Milestones.PaymentDate, o.Milestones.RevenueDate,
		o.Milestones.ClosingDate, o.Milestones.Blocked, o.Milestones.BlockedReason,
		o.Blockers, o.ActionItems,
		o.ConversionSource, o.RateUsed, o.RateWarning,
		o.LastModifiedLocal, o.LastModifiedRemote, o.UpdatedBy,
		o.DeletedAt, o.CreatedAt, o.UpdatedAt,
	}
}

func scanOpportunity(row pgx.Row) (*entity.Opportunity, error) {
	var o entity.Opportunity
	err := row.Scan(
		&o.ID, &o.DealName, &o.Owner, &o.Territory, &o.AmountLocal, &o.LocalCurrency, &o.AmountBase,
		&o.Probability, &o.Phase, &o.HealthSignal, &o.HealthReason, &o.RequiresAttention,
		&o.Milestones.ProposalDate, &o.Milestones.PODate, &o.Milestones.KickoffDate,
		&o.Milestones.InvoiceDate, &o.Milestones.PaymentDate, &o.Milestones.RevenueDate,
		&o.Milestones.ClosingDate, &o.Milestones.Blocked, &o.Milestones.BlockedReason,
		&o.Blockers, &o.ActionItems,
		&o.ConversionSource, &o.RateUsed, &o.RateWarning,
		&o.LastModifiedLocal, &o.LastModifiedRemote, &o.UpdatedBy,
		&o.DeletedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
