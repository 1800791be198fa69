package controller

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController interface {
	Health(c *fiber.Ctx) error
	Ready(c *fiber.Ctx) error
}

type healthController struct {
	dependencies map[string]Pinger
}

func NewHealthController(app *fiber.App, dependencies map[string]Pinger) HealthController {
	ctrl := &healthController{dependencies: dependencies}

	app.Get("/health", ctrl.Health)
	app.Get("/ready", ctrl.Ready)

	return ctrl
}

// Health godoc
// @Summary      Health check
// @Description  Returns the health status of the service
// @Tags         Health
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string  "Service is healthy"
// @Router       /health [get]
func (ctrl *healthController) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "ok",
	})
}

// Ready godoc
// @Summary      Readiness check
// @Description  Pings the configured stores
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]any  "All dependencies reachable"
// @Failure      503  {object}  map[string]any  "A dependency is unreachable"
// @Router       /ready [get]
func (ctrl *healthController) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), readinessTimeout)
	defer cancel()

	status := fiber.StatusOK
	checks := make(map[string]string, len(ctrl.dependencies))
	for name, dep := range ctrl.dependencies {
		if err := dep.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = fiber.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != fiber.StatusOK {
		state = "unavailable"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": state,
		"checks": checks,
	})
}
