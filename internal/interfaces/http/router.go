package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/opportunities"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/rates"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/review"
	appsync "github.com/jrkphani/pipeline-pulse-sub004/internal/application/sync"
)

// RouterDeps holds the use cases the router wires to handlers.
type RouterDeps struct {
	Sync          *appsync.Coordinator
	Rates         *rates.UseCase
	Opportunities *opportunities.UseCase
	Review        *review.UseCase
}

// Router registers the API routes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api/v1")

	// Sync passes
	runs := api.Group("/sync/runs")
	syncHandler := NewSyncHandler(deps.Sync)
	runs.Post("/", syncHandler.StartRun)
	runs.Get("/", syncHandler.ListRuns)
	runs.Get("/:id", syncHandler.GetRun)

	// Exchange rates
	ratesGroup := api.Group("/rates")
	ratesHandler := NewRatesHandler(deps.Rates)
	ratesGroup.Get("/", ratesHandler.Snapshot)
	ratesGroup.Post("/refresh", ratesHandler.Refresh)
	ratesGroup.Post("/convert", ratesHandler.Convert)

	// Opportunities (read-only)
	opps := api.Group("/opportunities")
	oppHandler := NewOpportunityHandler(deps.Opportunities)
	opps.Get("/", oppHandler.List)
	opps.Get("/:id", oppHandler.GetByID)

	// Conflict review
	conflicts := api.Group("/conflicts")
	conflictHandler := NewConflictHandler(deps.Review)
	conflicts.Get("/", conflictHandler.ListPending)
	conflicts.Post("/:id/decision", conflictHandler.Decide)
}
