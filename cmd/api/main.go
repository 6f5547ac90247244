package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/opportunities"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/rates"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/retention"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/review"
	appsync "github.com/jrkphani/pipeline-pulse-sub004/internal/application/sync"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/currency"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/infrastructure/crm"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/infrastructure/postgres"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/infrastructure/rateprovider"
	httpRouter "github.com/jrkphani/pipeline-pulse-sub004/internal/interfaces/http"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/interfaces/scheduler"
	"github.com/jrkphani/pipeline-pulse-sub004/pkg/config"
	"github.com/jrkphani/pipeline-pulse-sub004/pkg/keylock"
	"github.com/jrkphani/pipeline-pulse-sub004/pkg/logger"
)

// @title        Pipeline Pulse API
// @version      1.0
// @description  Opportunity-to-revenue tracking: CRM delta sync, health evaluation, base-currency normalization and conflict review.
// @BasePath     /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection")
	}
	defer pool.Close()

	oppRepo := postgres.NewOpportunityRepository(pool)
	rateRepo := postgres.NewExchangeRateRepository(pool)
	conflictRepo := postgres.NewConflictRepository(pool)
	runRepo := postgres.NewSyncRunRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	store := currency.NewStore()
	converter := currency.NewConverter(store, currency.Config{
		BaseCurrency: cfg.Rates.BaseCurrency,
		FreshDays:    cfg.Rates.FreshDays,
		StaleDays:    cfg.Rates.StaleDays,
	})

	ratesUC := rates.NewUseCase(rateprovider.NewClient(cfg.Rates), rateRepo, store, converter, log)
	if n, err := ratesUC.WarmStart(); err != nil {
		log.Warn().Err(err).Msg("rate cache warm start failed, conversions degrade until the next refresh")
	} else {
		log.Info().Int("currencies", n).Msg("rate cache warmed from persisted history")
	}

	// The sync coordinator and the review use case share one lock table so a
	// manual decision and a sync pass never write the same opportunity at once.
	locks := keylock.New()
	syncUC := appsync.NewCoordinator(
		crm.NewClient(cfg.Sync), txRunner, oppRepo, runRepo,
		converter, locks, log, cfg.Sync.Workers,
	)
	reviewUC := review.NewUseCase(conflictRepo, oppRepo, txRunner, converter, locks, log)
	oppsUC := opportunities.NewUseCase(oppRepo)
	purger := retention.NewPurger(oppRepo, conflictRepo, rateRepo, log, cfg.Retention.Days)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI locally: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Pipeline Pulse API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Sync:          syncUC,
		Rates:         ratesUC,
		Opportunities: oppsUC,
		Review:        reviewUC,
	})

	sched, err := scheduler.New(cfg, scheduler.Deps{
		Sync:   syncUC,
		Rates:  ratesUC,
		Purger: purger,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler setup")
	}
	sched.Start()
	defer sched.Stop()

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, closing server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}
