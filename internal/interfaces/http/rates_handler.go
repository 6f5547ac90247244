package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/dto"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/rates"
	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain"
)

// RatesHandler serves the exchange-rate cache and one-off conversions.
type RatesHandler struct {
	uc *rates.UseCase
}

// NewRatesHandler builds the handler.
func NewRatesHandler(uc *rates.UseCase) *RatesHandler {
	return &RatesHandler{uc: uc}
}

// Refresh godoc
// @Summary      Refresh exchange rates
// @Description  Pulls the upstream feed now. On provider failure the cached rates stay in force.
// @Tags         rates
// @Produce      json
// @Success      200  {object}  dto.RefreshRatesResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/v1/rates/refresh [post]
func (h *RatesHandler) Refresh(c *fiber.Ctx) error {
	out, err := h.uc.Refresh(c.Context())
	if err != nil {
		if errors.Is(err, domain.ErrProviderFailure) {
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "PROVIDER_FAILURE", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Snapshot godoc
// @Summary      Cached rates with freshness
// @Tags         rates
// @Produce      json
// @Success      200  {object}  dto.RatesSnapshotResponse
// @Router       /api/v1/rates [get]
func (h *RatesHandler) Snapshot(c *fiber.Ctx) error {
	return c.JSON(h.uc.Snapshot(time.Now()))
}

// Convert godoc
// @Summary      Convert an amount to the base currency
// @Description  Converts against the cached rate; a non-zero rate in the body is applied as a one-off manual rate.
// @Tags         rates
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConvertRequest  true  "Amount, ISO currency code and optional manual rate"
// @Success      200   {object}  dto.ConvertResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/v1/rates/convert [post]
func (h *RatesHandler) Convert(c *fiber.Ctx) error {
	var in dto.ConvertRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	out, err := h.uc.Convert(in, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
