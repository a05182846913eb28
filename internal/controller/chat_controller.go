package controller

import (
	"decidely-be/internal/dto"
	"decidely-be/internal/pkg/serverutils"
	"decidely-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, jwt fiber.Handler)
	ListThreads(ctx *fiber.Ctx) error
	GetThread(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	MarkRead(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router, jwt fiber.Handler) {
	h := r.Group("/chat", jwt)
	h.Get("", c.ListThreads)
	h.Post("", c.SendMessage)
	h.Get("/:id", c.GetThread)
	h.Patch("/:id/read", c.MarkRead)
}

func (c *chatController) ListThreads(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.ListThreads(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chats", res))
}

func (c *chatController) GetThread(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	threadId, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.GetThread(ctx.UserContext(), userId, threadId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat", res))
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendMessage(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Message sent", res))
}

func (c *chatController) MarkRead(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	threadId, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.MarkRead(ctx.UserContext(), userId, threadId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Thread marked as read", res))
}
