package controller

import (
	"decidely-be/internal/dto"
	"decidely-be/internal/pkg/serverutils"
	"decidely-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IInsightController interface {
	RegisterRoutes(r fiber.Router, jwt fiber.Handler)
	Questions(ctx *fiber.Ctx) error
	Analyze(ctx *fiber.Ctx) error
}

type insightController struct {
	service service.IInsightService
}

func NewInsightController(service service.IInsightService) IInsightController {
	return &insightController{service: service}
}

func (c *insightController) RegisterRoutes(r fiber.Router, jwt fiber.Handler) {
	r.Post("/scenarios/questions", jwt, c.Questions)
	r.Post("/scenarios/analysis", jwt, c.Analyze)
}

func (c *insightController) Questions(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.ScenarioQuestionsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Questions(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate questions", res))
}

func (c *insightController) Analyze(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.ScenarioAnalysisRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Analyze(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success analyze answers", res))
}
