package rates_test

// ─────────────────────────────────────────────────────────────
// Tests for the exchange-rate lifecycle use case
// ─────────────────────────────────────────────────────────────

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/dto"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/rates"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/currency"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
	"github.com/jrkphani/pipeline-pulse-sub004/pkg/logger"
)

type fakeProvider struct {
	quotes []rates.ProviderRate
	err    error
}

func (p *fakeProvider) Fetch(context.Context) ([]rates.ProviderRate, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.quotes, nil
}

type memRateRepo struct {
	mu   sync.Mutex
	rows []*entity.ExchangeRate
}

func (r *memRateRepo) Insert(rate *entity.ExchangeRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rate
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *memRateRepo) Latest() ([]*entity.ExchangeRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	newest := make(map[string]*entity.ExchangeRate)
	for _, row := range r.rows {
		if cur, ok := newest[row.Currency]; !ok || row.FetchedAt.After(cur.FetchedAt) {
			newest[row.Currency] = row
		}
	}
	var out []*entity.ExchangeRate
	for _, row := range newest {
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memRateRepo) PurgeOlderThan(cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	newest := make(map[string]*entity.ExchangeRate)
	for _, row := range r.rows {
		if cur, ok := newest[row.Currency]; !ok || row.FetchedAt.After(cur.FetchedAt) {
			newest[row.Currency] = row
		}
	}
	var kept []*entity.ExchangeRate
	var purged int64
	for _, row := range r.rows {
		if row.FetchedAt.Before(cutoff) && newest[row.Currency] != row {
			purged++
			continue
		}
		kept = append(kept, row)
	}
	r.rows = kept
	return purged, nil
}

func newRatesUseCase(provider rates.RateProvider) (*rates.UseCase, *currency.Store, *memRateRepo) {
	store := currency.NewStore()
	converter := currency.NewConverter(store, currency.Config{})
	repo := &memRateRepo{}
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	return rates.NewUseCase(provider, repo, store, converter, log), store, repo
}

func quote(code string, rate string, ageDays int) rates.ProviderRate {
	return rates.ProviderRate{
		Currency:   code,
		RateToBase: decimal.RequireFromString(rate),
		AsOf:       time.Now().AddDate(0, 0, -ageDays),
	}
}

func TestRefresh_AppliesValidQuotesAndSkipsGarbage(t *testing.T) {
	// lower-case codes normalize, the base currency and unusable quotes
	// (non-ISO code, non-positive rate) are skipped
	provider := &fakeProvider{quotes: []rates.ProviderRate{
		quote("USD", "1.35", 0),
		quote("eur", "1.45", 0),
		quote("SGD", "1", 0),
		quote("bitcoin", "50000", 0),
		quote("JPY", "-0.0112", 0),
	}}
	uc, store, repo := newRatesUseCase(provider)

	resp, err := uc.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, resp.Fetched)
	assert.Equal(t, 2, resp.Accepted)
	assert.Equal(t, 3, resp.Skipped)
	assert.Equal(t, 2, store.Len())

	_, usd := store.Lookup("USD")
	_, eur := store.Lookup("EUR")
	assert.True(t, usd)
	assert.True(t, eur)

	require.Len(t, repo.rows, 2, "only usable quotes reach the history")
	for _, row := range repo.rows {
		assert.Equal(t, entity.RateOriginProvider, row.Origin)
		assert.NotEmpty(t, row.ID)
	}
}

func TestRefresh_ProviderFailureKeepsCache(t *testing.T) {
	provider := &fakeProvider{err: errors.New("feed timeout")}
	uc, store, _ := newRatesUseCase(provider)
	store.Merge([]currency.Rate{{
		Currency:  "USD",
		ToBase:    decimal.RequireFromString("1.30"),
		FetchedAt: time.Now().AddDate(0, 0, -1),
	}})

	_, err := uc.Refresh(context.Background())

	assert.ErrorIs(t, err, domain.ErrProviderFailure)
	out, err := uc.Convert(dto.ConvertRequest{
		Amount:   decimal.NewFromInt(100),
		Currency: "USD",
	}, time.Now())
	require.NoError(t, err)
	assert.True(t, out.Amount.Equal(decimal.RequireFromString("130")),
		"the last known rate stays in force after a failed refresh")
	assert.Equal(t, currency.SourceLive, out.Source)
}

func TestRefresh_AllGarbageFeedIsAProviderFailure(t *testing.T) {
	provider := &fakeProvider{quotes: []rates.ProviderRate{
		quote("bitcoin", "50000", 0),
		quote("USD", "0", 0),
	}}
	uc, store, _ := newRatesUseCase(provider)

	_, err := uc.Refresh(context.Background())

	assert.ErrorIs(t, err, domain.ErrProviderFailure)
	assert.Equal(t, 0, store.Len())
}

func TestSeedRates_InsertsWithSeedOrigin(t *testing.T) {
	uc, store, repo := newRatesUseCase(nil)

	applied, err := uc.SeedRates([]rates.ProviderRate{
		quote("USD", "1.35", 2),
		quote("EUR", "1.45", 2),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	assert.Equal(t, 2, store.Len())
	require.Len(t, repo.rows, 2)
	for _, row := range repo.rows {
		assert.Equal(t, entity.RateOriginSeed, row.Origin)
	}
}

func TestWarmStart_LoadsNewestRatePerCurrency(t *testing.T) {
	uc, store, repo := newRatesUseCase(nil)
	old := time.Now().AddDate(0, 0, -40)
	recent := time.Now().AddDate(0, 0, -3)
	require.NoError(t, repo.Insert(&entity.ExchangeRate{
		ID: "r1", Currency: "USD", RateToBase: decimal.RequireFromString("1.40"),
		FetchedAt: old, Origin: entity.RateOriginProvider,
	}))
	require.NoError(t, repo.Insert(&entity.ExchangeRate{
		ID: "r2", Currency: "USD", RateToBase: decimal.RequireFromString("1.35"),
		FetchedAt: recent, Origin: entity.RateOriginProvider,
	}))

	n, err := uc.WarmStart()

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	r, ok := store.Lookup("USD")
	require.True(t, ok)
	assert.True(t, r.ToBase.Equal(decimal.RequireFromString("1.35")))
	assert.True(t, r.FetchedAt.Equal(recent))
}

func TestSnapshot_ReportsFreshnessBands(t *testing.T) {
	uc, store, _ := newRatesUseCase(nil)
	now := time.Now()
	store.Merge([]currency.Rate{
		{Currency: "USD", ToBase: decimal.RequireFromString("1.35"), FetchedAt: now.AddDate(0, 0, -1)},
		{Currency: "EUR", ToBase: decimal.RequireFromString("1.45"), FetchedAt: now.AddDate(0, 0, -30)},
		{Currency: "JPY", ToBase: decimal.RequireFromString("0.0112"), FetchedAt: now.AddDate(0, 0, -120)},
	})

	snap := uc.Snapshot(now)

	assert.Equal(t, "SGD", snap.BaseCurrency)
	require.Len(t, snap.Rates, 3)
	byCode := make(map[string]dto.RateResponse)
	for _, r := range snap.Rates {
		byCode[r.Currency] = r
	}
	assert.Equal(t, currency.SourceLive, byCode["USD"].State)
	assert.Equal(t, currency.SourceCached, byCode["EUR"].State)
	assert.Equal(t, currency.SourceFallback, byCode["JPY"].State)
	assert.Equal(t, 30, byCode["EUR"].AgeDays)
}

func TestConvert_RejectsMalformedCode(t *testing.T) {
	uc, _, _ := newRatesUseCase(nil)

	_, err := uc.Convert(dto.ConvertRequest{
		Amount:   decimal.NewFromInt(100),
		Currency: "12$",
	}, time.Now())

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConvert_UnknownISOCurrencyPassesThrough(t *testing.T) {
	uc, _, _ := newRatesUseCase(nil)

	out, err := uc.Convert(dto.ConvertRequest{
		Amount:   decimal.NewFromInt(5000),
		Currency: "MYR",
	}, time.Now())

	require.NoError(t, err)
	assert.Equal(t, currency.SourceUnsupported, out.Source)
	assert.True(t, out.Amount.Equal(decimal.NewFromInt(5000)))
	assert.NotEmpty(t, out.Warning)
}

func TestConvert_ManualRateBypassesCache(t *testing.T) {
	// the cache knows a different USD rate; the supplied rate must win and
	// the cache must stay untouched
	uc, store, _ := newRatesUseCase(nil)
	store.Merge([]currency.Rate{{
		Currency:  "USD",
		ToBase:    decimal.RequireFromString("1.35"),
		FetchedAt: time.Now(),
	}})

	out, err := uc.Convert(dto.ConvertRequest{
		Amount:   decimal.NewFromInt(100),
		Currency: "USD",
		Rate:     decimal.RequireFromString("1.32"),
	}, time.Now())

	require.NoError(t, err)
	assert.Equal(t, currency.SourceManual, out.Source)
	assert.True(t, out.Amount.Equal(decimal.NewFromInt(132)))
	assert.True(t, out.RateUsed.Equal(decimal.RequireFromString("1.32")))
	r, ok := store.Lookup("USD")
	require.True(t, ok)
	assert.True(t, r.ToBase.Equal(decimal.RequireFromString("1.35")))
}

func TestConvert_NegativeManualRateIsRejected(t *testing.T) {
	uc, _, _ := newRatesUseCase(nil)

	_, err := uc.Convert(dto.ConvertRequest{
		Amount:   decimal.NewFromInt(100),
		Currency: "USD",
		Rate:     decimal.RequireFromString("-1.32"),
	}, time.Now())

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
