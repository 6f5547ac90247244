package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/dto"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/review"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain"
)

// ConflictHandler serves the manual review queue.
type ConflictHandler struct {
	uc *review.UseCase
}

// NewConflictHandler builds the handler.
func NewConflictHandler(uc *review.UseCase) *ConflictHandler {
	return &ConflictHandler{uc: uc}
}

// ListPending godoc
// @Summary      Pending conflicts awaiting review
// @Tags         conflicts
// @Produce      json
// @Param        limit   query  int  false  "Max records"   default(50)
// @Param        offset  query  int  false  "Rows to skip"  default(0)
// @Success      200  {array}  dto.ConflictResponse
// @Router       /api/v1/conflicts [get]
func (h *ConflictHandler) ListPending(c *fiber.Ctx) error {
	out, err := h.uc.ListPending(c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Decide godoc
// @Summary      Decide a pending conflict
// @Description  keep_local confirms the local value; accept_remote applies the CRM value and re-evaluates the record. Phase regressions require a note.
// @Tags         conflicts
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Conflict ID"
// @Param        body  body  dto.ConflictDecisionRequest  true  "Decision"
// @Success      200   {object}  dto.ConflictDecisionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/conflicts/{id}/decision [post]
func (h *ConflictHandler) Decide(c *fiber.Ctx) error {
	var in dto.ConflictDecisionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	out, err := h.uc.Decide(c.Context(), c.Params("id"), in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrReasonRequired):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "REASON_REQUIRED", Message: err.Error()})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "conflict not found"})
		case errors.Is(err, domain.ErrConflict):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_DECIDED", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
