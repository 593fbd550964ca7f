package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"portfolio-assistant-be/internal/dto"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	environment string
}

func NewHealthController(environment string) IHealthController {
	return &healthController{
		environment: environment,
	}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.HealthResponse{
		Status:      "healthy",
		Environment: c.environment,
		Timestamp:   time.Now(),
	})
}
