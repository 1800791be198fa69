package controller

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/restaurant-hub/product-bulk/application"
	"github.com/restaurant-hub/product-bulk/application/dto"
	"github.com/restaurant-hub/product-bulk/domain/product"
)

type StatsController interface {
	GetStats(c *fiber.Ctx) error
}

type statsController struct {
	service application.AuditService
}

func NewStatsController(app *fiber.App, service application.AuditService) StatsController {
	ctrl := &statsController{service: service}

	api := app.Group("/api/v1")
	api.Get("/products/bulk/stats", ctrl.GetStats)

	return ctrl
}

// GetStats godoc
// @Summary      Get bulk operation statistics
// @Description  Aggregated audit statistics of bulk operations within a time range
// @Tags         Products
// @Produce      json
// @Param        from       query     int     true   "Start timestamp (Unix)"
// @Param        to         query     int     true   "End timestamp (Unix)"
// @Param        operation  query     string  false  "Operation filter (delete, activate, deactivate)"
// @Param        group_by   query     string  false  "Group results by (operation, hour, day)"
// @Success      200        {object}  dto.StatsResponse  "Statistics"
// @Failure      400        {object}  dto.ErrorResponse  "Validation error"
// @Failure      500        {object}  dto.ErrorResponse  "Internal server error"
// @Router       /api/v1/products/bulk/stats [get]
func (ctrl *statsController) GetStats(c *fiber.Ctx) error {
	query := &product.GetStatsQuery{
		From:      int64(c.QueryInt("from", 0)),
		To:        int64(c.QueryInt("to", 0)),
		Operation: product.Operation(c.Query("operation")),
		GroupBy:   c.Query("group_by"),
	}

	resp, err := ctrl.service.GetStats(c.Context(), query)
	if err != nil {
		var validationErr *product.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error:   "validation failed",
				Details: validationErr.Errors,
			})
		}

		slog.Error("Failed to get bulk operation stats", "requestID", c.Locals("requestID"), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to get stats",
		})
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}
