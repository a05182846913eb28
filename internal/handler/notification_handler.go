package handler

import (
	"time"

	"decidely-be/internal/pkg/logger"
	"decidely-be/internal/pkg/serverutils"
	"decidely-be/internal/service"
	"decidely-be/pkg/events"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	service      service.INotificationService
	publisher    events.Publisher
	logger       logger.ILogger
	allowTrigger bool
}

type NotificationHandlerOption func(*NotificationHandler)

// WithEventTrigger exposes POST /notifications/trigger. Keep it off in production.
func WithEventTrigger(enabled bool) NotificationHandlerOption {
	return func(h *NotificationHandler) {
		h.allowTrigger = enabled
	}
}

func NewNotificationHandler(service service.INotificationService, pub events.Publisher, log logger.ILogger, opts ...NotificationHandlerOption) *NotificationHandler {
	h := &NotificationHandler{
		service:   service,
		publisher: pub,
		logger:    log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GetNotifications returns the user's notifications.
func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	userID, err := serverutils.UserID(c)
	if err != nil {
		return err
	}

	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	notifications, total, err := h.service.GetNotifications(c.UserContext(), userID, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(serverutils.SuccessResponse("Notifications", fiber.Map{
		"items": notifications,
		"total": total,
		"page":  offset/limit + 1,
		"limit": limit,
	}))
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	userID, err := serverutils.UserID(c)
	if err != nil {
		return err
	}

	count, err := h.service.GetUnreadCount(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return c.JSON(serverutils.SuccessResponse("Unread count", fiber.Map{"count": count}))
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	userID, err := serverutils.UserID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return serverutils.BadRequest("Invalid ID")
	}

	if err := h.service.MarkAsRead(c.UserContext(), userID, id); err != nil {
		return err
	}

	return c.JSON(serverutils.SuccessResponse[any]("Notification marked as read", nil))
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	userID, err := serverutils.UserID(c)
	if err != nil {
		return err
	}

	if err := h.service.MarkAllAsRead(c.UserContext(), userID); err != nil {
		return err
	}

	return c.JSON(serverutils.SuccessResponse[any]("All notifications marked as read", nil))
}

// TriggerEvent publishes an event addressed to the caller. Used to exercise
// the notification pipeline end to end.
func (h *NotificationHandler) TriggerEvent(c *fiber.Ctx) error {
	userID, err := serverutils.UserID(c)
	if err != nil {
		return err
	}

	type Request struct {
		Type    string                 `json:"type" validate:"required"`
		Payload map[string]interface{} `json:"payload"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if req.Payload == nil {
		req.Payload = make(map[string]interface{})
	}
	req.Payload["user_id"] = userID.String()

	if h.publisher == nil {
		return serverutils.Unavailable("Event publisher not configured", nil)
	}

	evt := events.BaseEvent{
		Type:       req.Type,
		Data:       req.Payload,
		OccurredAt: time.Now(),
	}
	if err := h.publisher.Publish(c.UserContext(), evt); err != nil {
		return serverutils.Unavailable("Failed to publish event", err)
	}

	return c.JSON(serverutils.SuccessResponse("Event published", fiber.Map{"type": evt.Type}))
}

func (h *NotificationHandler) RegisterRoutes(router fiber.Router, jwt fiber.Handler) {
	notif := router.Group("/notifications", jwt)
	notif.Get("/", h.GetNotifications)
	notif.Get("/unread-count", h.GetUnreadCount)
	notif.Patch("/read-all", h.MarkAllAsRead)
	notif.Patch("/:id/read", h.MarkAsRead)
	if h.allowTrigger {
		notif.Post("/trigger", h.TriggerEvent)
	}
}
