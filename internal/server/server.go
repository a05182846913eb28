package server

import (
	"log"

	"decidely-be/internal/bootstrap"
	"decidely-be/internal/config"
	"decidely-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ErrorHandler: serverutils.ErrorHandler(container.Logger),
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(serverutils.SuccessResponse("ok", fiber.Map{"instance": cfg.App.InstanceID}))
	})

	// Routes
	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	jwt := serverutils.JwtMiddleware(cfg.App.JwtSecret)
	api := app.Group("/api")

	c.AuthController.RegisterRoutes(api, jwt)
	c.ProgressController.RegisterRoutes(api, jwt)
	c.ScenarioController.RegisterRoutes(api, jwt)
	c.ChatController.RegisterRoutes(api, jwt)
	c.JournalController.RegisterRoutes(api, jwt)
	c.CoachController.RegisterRoutes(api, jwt)
	c.UserController.RegisterRoutes(api, jwt)
	c.CommunityController.RegisterRoutes(api, jwt)
	c.InsightController.RegisterRoutes(api, jwt)

	c.NotificationHandler.RegisterRoutes(api, jwt)
	c.RelayHandler.RegisterRoutes(api)
}
