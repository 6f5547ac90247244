// Package crm implements the CRM gateway over the vendor's HTTP delta API.
// The adapter materializes wire records into domain opportunities plus
// per-field modification stamps; it knows nothing about merging.
package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	appsync "github.com/jrkphani/pipeline-pulse-sub004/internal/application/sync"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/conflict"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
	"github.com/jrkphani/pipeline-pulse-sub004/pkg/config"
)

// Compile-time check that Client implements the sync gateway port.
var _ appsync.CRMGateway = (*Client)(nil)

const (
	changedPath = "/opportunities/changed"
	dateLayout  = "2006-01-02"
)

// Client fetches opportunity deltas from the CRM REST API.
type Client struct {
	baseURL    string
	token      string
	pageSize   int
	httpClient *http.Client
}

// NewClient builds the adapter from the sync configuration. A missing base
// URL surfaces as a descriptive error on the first fetch, not a panic.
func NewClient(cfg config.SyncConfig) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 200
	}
	return &Client{
		baseURL:  cfg.CRMBaseURL,
		token:    cfg.CRMToken,
		pageSize: pageSize,
		httpClient: &http.Client{
			// Per-page network timeout; the coordinator bounds the whole pass.
			Timeout: 30 * time.Second,
		},
	}
}

// FetchChanged pulls every record modified since the watermark, paging until
// the API reports no more.
func (c *Client) FetchChanged(ctx context.Context, since time.Time) ([]appsync.RemoteRecord, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("CRM: base URL not configured")
	}

	var out []appsync.RemoteRecord
	for page := 1; ; page++ {
		resp, err := c.fetchPage(ctx, since, page)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Records {
			rec, err := mapRecord(raw)
			if err != nil {
				return nil, fmt.Errorf("CRM: record %s: %w", raw.ID, err)
			}
			out = append(out, rec)
		}
		if !resp.More {
			break
		}
	}
	return out, nil
}

func (c *Client) fetchPage(ctx context.Context, since time.Time, page int) (*changedResponse, error) {
	u, err := url.Parse(c.baseURL + changedPath)
	if err != nil {
		return nil, fmt.Errorf("CRM: parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(c.pageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("CRM: create HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("CRM: timeout or cancellation: %w", ctx.Err())
		}
		return nil, fmt.Errorf("CRM: HTTP call failed: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 8*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("CRM: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Message != "" {
			return nil, fmt.Errorf("CRM: API error (%s): %s", errResp.Code, errResp.Message)
		}
		return nil, fmt.Errorf("CRM: HTTP %d: %s", resp.StatusCode, string(rawBody))
	}

	var out changedResponse
	if err := json.Unmarshal(rawBody, &out); err != nil {
		return nil, fmt.Errorf("CRM: decode response: %w", err)
	}
	return &out, nil
}

// mapRecord materializes one wire record into the gateway's output shape.
func mapRecord(raw remoteOpportunity) (appsync.RemoteRecord, error) {
	if raw.ID == "" {
		return appsync.RemoteRecord{}, fmt.Errorf("missing id")
	}
	if raw.ModifiedAt.IsZero() {
		return appsync.RemoteRecord{}, fmt.Errorf("missing modified_at")
	}

	o := &entity.Opportunity{
		ID:                 raw.ID,
		DealName:           raw.DealName,
		Owner:              raw.Owner,
		Territory:          raw.Territory,
		AmountLocal:        raw.Amount,
		LocalCurrency:      raw.Currency,
		Probability:        raw.Probability,
		Phase:              raw.Phase,
		Blockers:           raw.Blockers,
		ActionItems:        raw.ActionItems,
		LastModifiedRemote: raw.ModifiedAt,
	}
	o.Milestones.Blocked = raw.Blocked
	o.Milestones.BlockedReason = raw.BlockedReason
	if raw.Deleted {
		deletedAt := raw.ModifiedAt
		o.DeletedAt = &deletedAt
	}

	dates := []struct {
		value string
		dst   **time.Time
	}{
		{raw.ProposalDate, &o.Milestones.ProposalDate},
		{raw.PODate, &o.Milestones.PODate},
		{raw.KickoffDate, &o.Milestones.KickoffDate},
		{raw.InvoiceDate, &o.Milestones.InvoiceDate},
		{raw.PaymentDate, &o.Milestones.PaymentDate},
		{raw.RevenueDate, &o.Milestones.RevenueDate},
		{raw.ClosingDate, &o.Milestones.ClosingDate},
	}
	for _, d := range dates {
		if d.value == "" {
			continue
		}
		t, err := time.Parse(dateLayout, d.value)
		if err != nil {
			return appsync.RemoteRecord{}, fmt.Errorf("bad date %q: %w", d.value, err)
		}
		*d.dst = &t
	}

	return appsync.RemoteRecord{
		Opportunity: o,
		FieldTimes:  fieldTimes(raw),
		ModifiedAt:  raw.ModifiedAt,
	}, nil
}

// fieldTimes returns the per-field stamps, falling back to the record stamp
// for every syncable field when the CRM sends none.
func fieldTimes(raw remoteOpportunity) map[string]time.Time {
	if len(raw.FieldTimes) > 0 {
		return raw.FieldTimes
	}
	out := make(map[string]time.Time)
	for _, name := range conflict.FieldNames() {
		out[name] = raw.ModifiedAt
	}
	return out
}
