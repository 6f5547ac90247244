package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/dto"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/opportunities"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain"
)

// OpportunityHandler serves the synced opportunity set, read-only. Writes
// happen through sync passes and review decisions, never through this API.
type OpportunityHandler struct {
	uc *opportunities.UseCase
}

// NewOpportunityHandler builds the handler.
func NewOpportunityHandler(uc *opportunities.UseCase) *OpportunityHandler {
	return &OpportunityHandler{uc: uc}
}

// List godoc
// @Summary      List opportunities
// @Tags         opportunities
// @Produce      json
// @Param        attention  query  bool  false  "Only red or blocked records"  default(false)
// @Param        limit      query  int   false  "Max records"                  default(100)
// @Param        offset     query  int   false  "Rows to skip"                 default(0)
// @Success      200  {array}  dto.OpportunityResponse
// @Router       /api/v1/opportunities [get]
func (h *OpportunityHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.QueryBool("attention", false), c.QueryInt("limit", 100), c.QueryInt("offset", 0))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Get one opportunity with health fields
// @Tags         opportunities
// @Produce      json
// @Param        id   path  string  true  "Opportunity ID"
// @Success      200  {object}  dto.OpportunityResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/opportunities/{id} [get]
func (h *OpportunityHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id is required"})
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "opportunity not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
