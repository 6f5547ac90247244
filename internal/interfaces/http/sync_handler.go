package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/dto"
	appsync "github.com/jrkphani/pipeline-pulse-sub004/internal/application/sync"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
)

// SyncHandler serves sync-pass triggering and inspection.
type SyncHandler struct {
	coord *appsync.Coordinator
}

// NewSyncHandler builds the handler.
func NewSyncHandler(coord *appsync.Coordinator) *SyncHandler {
	return &SyncHandler{coord: coord}
}

// StartRun godoc
// @Summary      Trigger a sync pass
// @Description  Starts an asynchronous CRM sync pass. Only one pass runs at a time.
// @Tags         sync
// @Produce      json
// @Success      202  {object}  dto.SyncRunResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/v1/sync/runs [post]
func (h *SyncHandler) StartRun(c *fiber.Ctx) error {
	out, err := h.coord.StartRun(entity.TriggerManual)
	if err != nil {
		if errors.Is(err, domain.ErrRunInProgress) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "RUN_IN_PROGRESS", Message: "a sync pass is already running"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusAccepted).JSON(out)
}

// GetRun godoc
// @Summary      Sync run status
// @Tags         sync
// @Produce      json
// @Param        id   path  string  true  "Run ID"
// @Success      200  {object}  dto.SyncRunResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/sync/runs/{id} [get]
func (h *SyncHandler) GetRun(c *fiber.Ctx) error {
	out, err := h.coord.GetRun(c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "run id is required"})
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "run not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// ListRuns godoc
// @Summary      Recent sync runs
// @Tags         sync
// @Produce      json
// @Param        limit  query  int  false  "Max runs"  default(20)
// @Success      200    {array}  dto.SyncRunResponse
// @Router       /api/v1/sync/runs [get]
func (h *SyncHandler) ListRuns(c *fiber.Ctx) error {
	out, err := h.coord.ListRuns(c.QueryInt("limit", 20))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
