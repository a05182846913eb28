package controller

import (
	"decidely-be/internal/dto"
	"decidely-be/internal/pkg/serverutils"
	"decidely-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICoachController interface {
	RegisterRoutes(r fiber.Router, jwt fiber.Handler)
	Ask(ctx *fiber.Ctx) error
}

type coachController struct {
	service service.ICoachService
}

func NewCoachController(service service.ICoachService) ICoachController {
	return &coachController{service: service}
}

func (c *coachController) RegisterRoutes(r fiber.Router, jwt fiber.Handler) {
	r.Post("/coach", jwt, c.Ask)
}

func (c *coachController) Ask(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CoachRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Ask(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}
