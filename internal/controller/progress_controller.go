package controller

import (
	"decidely-be/internal/dto"
	"decidely-be/internal/pkg/serverutils"
	"decidely-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IProgressController interface {
	RegisterRoutes(r fiber.Router, jwt fiber.Handler)
	Init(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	SubmitScenarioResponse(ctx *fiber.Ctx) error
	CompleteScenario(ctx *fiber.Ctx) error
	CompleteChallenge(ctx *fiber.Ctx) error
}

type progressController struct {
	service service.IProgressService
}

func NewProgressController(service service.IProgressService) IProgressController {
	return &progressController{service: service}
}

func (c *progressController) RegisterRoutes(r fiber.Router, jwt fiber.Handler) {
	p := r.Group("/user-progress", jwt)
	p.Get("", c.Get)
	p.Post("/init", c.Init)

	r.Post("/scenarios/response", jwt, c.SubmitScenarioResponse)
	r.Post("/scenarios/complete", jwt, c.CompleteScenario)
	r.Post("/challenges/complete", jwt, c.CompleteChallenge)
}

func (c *progressController) Init(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Init(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Progress initialized", res))
}

func (c *progressController) Get(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Get(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get progress", res))
}

func (c *progressController) SubmitScenarioResponse(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.SubmitScenarioResponseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SubmitScenarioResponse(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse(decisionMessage(res), res))
}

func (c *progressController) CompleteScenario(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CompleteScenarioRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CompleteScenario(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse(decisionMessage(res), res))
}

func (c *progressController) CompleteChallenge(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CompleteChallengeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CompleteChallenge(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse(decisionMessage(res), res))
}

func decisionMessage(res *dto.DecisionResultResponse) string {
	if res.Status == service.StatusAlreadyCompleted {
		return "Already completed"
	}
	return "Decision recorded"
}
