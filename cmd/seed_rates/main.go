// seed_rates loads an ECB-style XML rate feed from disk into the
// exchange-rate history, so a fresh deployment converts amounts before the
// first scheduled refresh runs.
//
// Usage: go run ./cmd/seed_rates [path/rates.xml]
// By default it reads rates.xml from the current directory.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/rates"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/currency"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/infrastructure/postgres"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/infrastructure/rateprovider"
	"github.com/jrkphani/pipeline-pulse-sub004/pkg/config"
	"github.com/jrkphani/pipeline-pulse-sub004/pkg/logger"
)

func main() {
	xmlPath := "rates.xml"
	if len(os.Args) > 1 {
		xmlPath = os.Args[1]
	}
	data, err := os.ReadFile(xmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read feed: %v\n", err)
		os.Exit(1)
	}

	feed, err := rateprovider.ParseFeed(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse feed: %v\n", err)
		os.Exit(1)
	}
	quotes := feed.ProviderRates()
	if len(quotes) == 0 {
		fmt.Fprintln(os.Stderr, "feed holds no usable quotes")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "warn"})

	pool, err := postgres.NewPool(context.Background(), cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "PostgreSQL connection: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := currency.NewStore()
	converter := currency.NewConverter(store, currency.Config{
		BaseCurrency: cfg.Rates.BaseCurrency,
		FreshDays:    cfg.Rates.FreshDays,
		StaleDays:    cfg.Rates.StaleDays,
	})
	uc := rates.NewUseCase(
		rateprovider.NewClient(cfg.Rates),
		postgres.NewExchangeRateRepository(pool),
		store, converter, log,
	)

	n, err := uc.SeedRates(quotes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed rates: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded %d currencies from %s (feed date %s)\n", n, xmlPath, feed.AsOf.Format("2006-01-02"))
}
