package rates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	xcurrency "golang.org/x/text/currency"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/dto"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/currency"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/repository"
	"github.com/jrkphani/pipeline-pulse-sub004/pkg/logger"
)

// UseCase owns the exchange-rate lifecycle: refreshing the cache from the
// provider, warming it from storage at boot, seeding it offline and serving
// conversions. A failed refresh never clears the cache; the last known rates
// stay in force until replaced.
type UseCase struct {
	provider  RateProvider
	rateRepo  repository.ExchangeRateRepository
	store     *currency.Store
	converter *currency.Converter
	log       *logger.Logger
}

// NewUseCase builds the use case. provider may be nil when only seeded and
// cached rates are served.
func NewUseCase(
	provider RateProvider,
	rateRepo repository.ExchangeRateRepository,
	store *currency.Store,
	converter *currency.Converter,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		provider:  provider,
		rateRepo:  rateRepo,
		store:     store,
		converter: converter,
		log:       log,
	}
}

// Refresh pulls the current quote set from the provider, appends it to the
// rate history and merges it into the in-memory cache. On provider failure
// the cache is left untouched and domain.ErrProviderFailure is returned.
func (uc *UseCase) Refresh(ctx context.Context) (*dto.RefreshRatesResponse, error) {
	if uc.provider == nil {
		return nil, fmt.Errorf("%w: no provider configured", domain.ErrProviderFailure)
	}
	quotes, err := uc.provider.Fetch(ctx)
	if err != nil {
		uc.log.Error().Err(err).Msg("rate refresh failed, keeping cached rates")
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}

	accepted, err := uc.apply(quotes, entity.RateOriginProvider)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int("accepted", accepted).Int("skipped", len(quotes)-accepted).
		Msg("exchange rates refreshed")
	return &dto.RefreshRatesResponse{
		Fetched:   len(quotes),
		Accepted:  accepted,
		Skipped:   len(quotes) - accepted,
		FetchedAt: time.Now(),
	}, nil
}

// SeedRates inserts quotes obtained offline (a downloaded feed file) and
// merges them into the cache. Returns how many were applied.
func (uc *UseCase) SeedRates(quotes []ProviderRate) (int, error) {
	return uc.apply(quotes, entity.RateOriginSeed)
}

// apply validates quotes, appends them to the history and merges the valid
// ones into the cache in one step.
func (uc *UseCase) apply(quotes []ProviderRate, origin string) (int, error) {
	now := time.Now()
	merged := make([]currency.Rate, 0, len(quotes))
	for _, q := range quotes {
		code := strings.ToUpper(strings.TrimSpace(q.Currency))
		if code == uc.converter.Base() {
			continue
		}
		if _, err := xcurrency.ParseISO(code); err != nil {
			uc.log.Warn().Str("currency", q.Currency).Msg("skipping non-ISO currency code from feed")
			continue
		}
		if !q.RateToBase.IsPositive() {
			uc.log.Warn().Str("currency", code).Str("rate", q.RateToBase.String()).
				Msg("skipping non-positive rate from feed")
			continue
		}
		fetched := q.AsOf
		if fetched.IsZero() {
			fetched = now
		}
		row := &entity.ExchangeRate{
			ID:         uuid.New().String(),
			Currency:   code,
			RateToBase: q.RateToBase,
			FetchedAt:  fetched,
			Origin:     origin,
			CreatedAt:  now,
		}
		if err := uc.rateRepo.Insert(row); err != nil {
			return 0, fmt.Errorf("persist rate %s: %w", code, err)
		}
		merged = append(merged, currency.Rate{Currency: code, ToBase: q.RateToBase, FetchedAt: fetched})
	}
	if len(merged) == 0 {
		return 0, fmt.Errorf("%w: feed returned no usable rates", domain.ErrProviderFailure)
	}
	uc.store.Merge(merged)
	return len(merged), nil
}

// WarmStart loads the newest persisted rate per currency into the cache.
// Called once at boot, before the first conversion.
func (uc *UseCase) WarmStart() (int, error) {
	latest, err := uc.rateRepo.Latest()
	if err != nil {
		return 0, fmt.Errorf("load cached rates: %w", err)
	}
	rates := make([]currency.Rate, 0, len(latest))
	for _, r := range latest {
		rates = append(rates, currency.Rate{Currency: r.Currency, ToBase: r.RateToBase, FetchedAt: r.FetchedAt})
	}
	uc.store.Merge(rates)
	return len(rates), nil
}

// Snapshot reports every cached rate with its age and freshness band.
func (uc *UseCase) Snapshot(today time.Time) dto.RatesSnapshotResponse {
	cached := uc.store.Snapshot()
	out := dto.RatesSnapshotResponse{
		BaseCurrency: uc.converter.Base(),
		Rates:        make([]dto.RateResponse, 0, len(cached)),
	}
	for _, r := range cached {
		// converting one unit reports the band without duplicating the policy
		probe := uc.converter.Convert(decimal.NewFromInt(1), r.Currency, today)
		out.Rates = append(out.Rates, dto.RateResponse{
			Currency:   r.Currency,
			RateToBase: r.ToBase,
			FetchedAt:  r.FetchedAt,
			AgeDays:    currency.AgeDays(r.FetchedAt, today),
			State:      probe.Source,
		})
	}
	return out
}

// Convert normalizes one amount to the base currency. Malformed codes are
// rejected; well-formed codes without a cached rate pass through unconverted
// with a warning, matching how the sync pass treats them. A non-zero manual
// rate bypasses the cache for this conversion only.
func (uc *UseCase) Convert(req dto.ConvertRequest, today time.Time) (*dto.ConvertResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Currency))
	if code == "" {
		return nil, fmt.Errorf("%w: currency is required", domain.ErrInvalidInput)
	}
	if _, err := xcurrency.ParseISO(code); err != nil {
		return nil, fmt.Errorf("%w: %q is not an ISO 4217 code", domain.ErrInvalidInput, req.Currency)
	}

	var res currency.Result
	switch {
	case req.Rate.IsZero():
		res = uc.converter.Convert(req.Amount, code, today)
	case req.Rate.IsNegative():
		return nil, fmt.Errorf("%w: manual rate must be positive", domain.ErrInvalidInput)
	default:
		res = uc.converter.ConvertWithRate(req.Amount, req.Rate)
	}
	return &dto.ConvertResponse{
		Amount:        res.Amount,
		AmountDisplay: currency.Display(res.Amount),
		BaseCurrency:  uc.converter.Base(),
		Source:        res.Source,
		RateUsed:      res.RateUsed,
		Warning:       res.Warning,
	}, nil
}
