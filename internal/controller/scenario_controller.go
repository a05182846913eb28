package controller

import (
	"decidely-be/internal/dto"
	"decidely-be/internal/pkg/serverutils"
	"decidely-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IScenarioController interface {
	RegisterRoutes(r fiber.Router, jwt fiber.Handler)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Share(ctx *fiber.Ctx) error
	DailyChallenges(ctx *fiber.Ctx) error
}

type scenarioController struct {
	service service.IScenarioService
}

func NewScenarioController(service service.IScenarioService) IScenarioController {
	return &scenarioController{service: service}
}

func (c *scenarioController) RegisterRoutes(r fiber.Router, jwt fiber.Handler) {
	// share links are opened by people who are not signed in yet
	r.Get("/scenarios/share/:id", c.Share)

	h := r.Group("/scenarios", jwt)
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Get("/:id", c.Show)

	r.Get("/daily-challenges", jwt, c.DailyChallenges)
}

func (c *scenarioController) List(ctx *fiber.Ctx) error {
	var query dto.ListScenariosQuery
	if err := ctx.QueryParser(&query); err != nil {
		return serverutils.BadRequest("Invalid query parameters")
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.service.List(ctx.UserContext(), &query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get scenarios", res))
}

func (c *scenarioController) Show(ctx *fiber.Ctx) error {
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.Show(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show scenario", res))
}

func (c *scenarioController) Create(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateScenarioRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create scenario", res))
}

func (c *scenarioController) Share(ctx *fiber.Ctx) error {
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.Share(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success share scenario", res))
}

func (c *scenarioController) DailyChallenges(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.DailyChallenges(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get daily challenges", res))
}
