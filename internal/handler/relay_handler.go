package handler

import (
	"decidely-be/internal/pkg/logger"
	"decidely-be/internal/pkg/serverutils"
	internalWS "decidely-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type RelayHandler struct {
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewRelayHandler(hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *RelayHandler {
	return &RelayHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

// ServeWs authenticates the handshake and hands the connection to the hub.
// Browsers pass the token as ?token=, other clients may use a Bearer header.
func (h *RelayHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr = serverutils.BearerToken(c)
	}
	if tokenStr == "" {
		return serverutils.Unauthorized("Missing token (query 'token' or header 'Authorization')")
	}

	userID, err := serverutils.ParseToken(tokenStr, h.jwtSecret)
	if err != nil {
		h.logger.Warn("RelayHandler", "Invalid token in WS handshake", map[string]interface{}{"ip": c.IP()})
		return serverutils.Unauthorized("Invalid token")
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("RelayHandler", "Relay session started", map[string]interface{}{"user_id": userID})
		internalWS.ServeWs(h.hub, conn, userID)
		h.logger.Info("RelayHandler", "Relay session ended", map[string]interface{}{"user_id": userID})
	})(c)
}

func (h *RelayHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/chat", h.ServeWs)
	// notifications share the same socket
	router.Get("/ws", h.ServeWs)
}
