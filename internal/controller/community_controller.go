package controller

import (
	"decidely-be/internal/dto"
	"decidely-be/internal/pkg/serverutils"
	"decidely-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICommunityController interface {
	RegisterRoutes(r fiber.Router, jwt fiber.Handler)
	Profiles(ctx *fiber.Ctx) error
	Activities(ctx *fiber.Ctx) error
}

type communityController struct {
	service service.ICommunityService
}

func NewCommunityController(service service.ICommunityService) ICommunityController {
	return &communityController{service: service}
}

func (c *communityController) RegisterRoutes(r fiber.Router, jwt fiber.Handler) {
	h := r.Group("/community", jwt)
	h.Get("/profiles", c.Profiles)
	h.Get("/activities", c.Activities)
}

func (c *communityController) Profiles(ctx *fiber.Ctx) error {
	var query dto.CommunityQuery
	if err := ctx.QueryParser(&query); err != nil {
		return serverutils.BadRequest("Invalid query parameters")
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.service.Profiles(ctx.UserContext(), &query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get community profiles", res))
}

func (c *communityController) Activities(ctx *fiber.Ctx) error {
	res, err := c.service.Activities(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get community activities", res))
}
