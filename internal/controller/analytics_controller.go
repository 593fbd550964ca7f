package controller

import (
	"github.com/gofiber/fiber/v2"

	"portfolio-assistant-be/internal/pkg/serverutils"
	"portfolio-assistant-be/internal/service"
)

type IAnalyticsController interface {
	RegisterRoutes(r fiber.Router)
	PopularQueries(ctx *fiber.Ctx) error
	QualityMetrics(ctx *fiber.Ctx) error
	ModeDistribution(ctx *fiber.Ctx) error
	Dashboard(ctx *fiber.Ctx) error
}

type analyticsController struct {
	analyticsService service.IAnalyticsService
}

func NewAnalyticsController(analyticsService service.IAnalyticsService) IAnalyticsController {
	return &analyticsController{
		analyticsService: analyticsService,
	}
}

func (c *analyticsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/analytics")
	h.Get("/popular-queries", c.PopularQueries)
	h.Get("/quality-metrics", c.QualityMetrics)
	h.Get("/mode-distribution", c.ModeDistribution)
	h.Get("/dashboard", c.Dashboard)
}

func (c *analyticsController) PopularQueries(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 10)
	res, err := c.analyticsService.PopularQueries(ctx.Context(), limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Popular queries", res))
}

func (c *analyticsController) QualityMetrics(ctx *fiber.Ctx) error {
	hours := ctx.QueryInt("hours", 24)
	res, err := c.analyticsService.QualityMetrics(ctx.Context(), hours)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Quality metrics", res))
}

func (c *analyticsController) ModeDistribution(ctx *fiber.Ctx) error {
	res, err := c.analyticsService.ModeDistribution(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Mode distribution", res))
}

func (c *analyticsController) Dashboard(ctx *fiber.Ctx) error {
	res, err := c.analyticsService.Dashboard(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Analytics dashboard", res))
}
