package crm_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/infrastructure/crm"
	"github.com/jrkphani/pipeline-pulse-sub004/pkg/config"
)

// ═══════════════════════════════════════════════════════════════════════════
// Fixtures
// ═══════════════════════════════════════════════════════════════════════════

const pageOne = `{
	"records": [{
		"id": "opp-101",
		"deal_name": "Data platform rollout",
		"owner": "sales.lead",
		"territory": "ASEAN",
		"amount": "125000.50",
		"currency": "USD",
		"probability": 60,
		"phase": 2,
		"proposal_date": "2026-05-02",
		"closing_date": "2026-09-30",
		"blockers": ["security review"],
		"modified_at": "2026-06-01T10:00:00Z",
		"field_times": {"owner": "2026-06-01T10:00:00Z"}
	}],
	"more": true
}`

const pageTwo = `{
	"records": [{
		"id": "opp-102",
		"deal_name": "Support renewal",
		"amount": 40000,
		"currency": "MYR",
		"probability": 90,
		"phase": 4,
		"deleted": true,
		"modified_at": "2026-06-02T08:30:00Z"
	}],
	"more": false
}`

func newClient(baseURL string) *crm.Client {
	return crm.NewClient(config.SyncConfig{
		CRMBaseURL: baseURL,
		CRMToken:   "test-token",
		PageSize:   1,
	})
}

// ═══════════════════════════════════════════════════════════════════════════
// Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestFetchChanged_PagesUntilDoneAndMapsRecords(t *testing.T) {
	since := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)

	var gotPaths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "2026-05-20T00:00:00Z", r.URL.Query().Get("since"))
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, pageOne)
		case "2":
			fmt.Fprint(w, pageTwo)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	records, err := newClient(srv.URL).FetchChanged(context.Background(), since)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"/opportunities/changed", "/opportunities/changed"}, gotPaths)

	first := records[0]
	assert.Equal(t, "opp-101", first.Opportunity.ID)
	assert.Equal(t, "125000.5", first.Opportunity.AmountLocal.String())
	assert.Equal(t, "USD", first.Opportunity.LocalCurrency)
	require.NotNil(t, first.Opportunity.Milestones.ProposalDate)
	assert.Equal(t, "2026-05-02", first.Opportunity.Milestones.ProposalDate.Format("2006-01-02"))
	// Explicit field_times pass through untouched.
	require.Len(t, first.FieldTimes, 1)
	assert.Equal(t, first.ModifiedAt, first.FieldTimes["owner"])

	second := records[1]
	require.NotNil(t, second.Opportunity.DeletedAt, "deleted flag becomes a soft-delete stamp")
	assert.Equal(t, second.ModifiedAt, *second.Opportunity.DeletedAt)
	// No field_times on the wire: the record stamp covers every field.
	assert.Greater(t, len(second.FieldTimes), 10)
	assert.Equal(t, second.ModifiedAt, second.FieldTimes["amount_local"])
}

func TestFetchChanged_APIErrorIsSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"code": "INVALID_TOKEN", "message": "token expired"}`)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).FetchChanged(context.Background(), time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_TOKEN")
	assert.Contains(t, err.Error(), "token expired")
}

func TestFetchChanged_RecordWithoutIDIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"records": [{"deal_name": "orphan", "modified_at": "2026-06-01T00:00:00Z"}], "more": false}`)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).FetchChanged(context.Background(), time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id")
}

func TestFetchChanged_MissingBaseURLIsAnError(t *testing.T) {
	_, err := newClient("").FetchChanged(context.Background(), time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "base URL not configured")
}
