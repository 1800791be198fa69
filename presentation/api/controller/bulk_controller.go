package controller

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/restaurant-hub/product-bulk/application"
	"github.com/restaurant-hub/product-bulk/application/dto"
	"github.com/restaurant-hub/product-bulk/domain/product"
)

type BulkController interface {
	Execute(c *fiber.Ctx) error
	MethodNotAllowed(c *fiber.Ctx) error
}

type bulkController struct {
	service application.BulkProductService
}

func NewBulkController(app *fiber.App, service application.BulkProductService) BulkController {
	ctrl := &bulkController{service: service}

	api := app.Group("/api/v1")
	api.Post("/products/bulk", ctrl.Execute)
	api.All("/products/bulk", ctrl.MethodNotAllowed)

	return ctrl
}

// Execute godoc
// @Summary      Run a bulk product operation
// @Description  Delete, activate or deactivate up to 100 products. Items are processed serially in micro-batches of 5 with pauses in between. Per-item failures are reported in data and do not fail the request.
// @Tags         Products
// @Accept       json
// @Produce      json
// @Param        command  body      product.BulkProductCommand  true  "Bulk operation"
// @Success      200      {object}  dto.BulkOperationResponse   "Batch processed"
// @Failure      400      {object}  dto.ErrorResponse           "Invalid request"
// @Router       /api/v1/products/bulk [post]
func (ctrl *bulkController) Execute(c *fiber.Ctx) error {
	var cmd product.BulkProductCommand
	if err := c.BodyParser(&cmd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
		})
	}

	resp, err := ctrl.service.Execute(c.Context(), &cmd)
	if err != nil {
		var validationErr *product.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error:   "validation failed",
				Details: validationErr.Errors,
			})
		}

		slog.Error("Bulk operation failed", "operation", cmd.Operation, "requestID", c.Locals("requestID"), "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "failed to process bulk operation",
		})
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// MethodNotAllowed godoc
// @Summary      Reject non-POST methods
// @Tags         Products
// @Produce      json
// @Failure      400  {object}  dto.ErrorResponse  "Method not allowed"
// @Router       /api/v1/products/bulk [get]
func (ctrl *bulkController) MethodNotAllowed(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: "method " + c.Method() + " not allowed, use POST",
	})
}
