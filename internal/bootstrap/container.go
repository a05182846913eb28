package bootstrap

import (
	"context"
	"log"

	"decidely-be/internal/config"
	"decidely-be/internal/controller"
	"decidely-be/internal/handler"
	"decidely-be/internal/pkg/logger"
	"decidely-be/internal/repository/implementation"
	"decidely-be/internal/repository/memory"
	"decidely-be/internal/repository/unitofwork"
	"decidely-be/internal/service"
	"decidely-be/internal/websocket"
	"decidely-be/pkg/events"
	"decidely-be/pkg/llm"
	"decidely-be/pkg/llm/factory"
	"decidely-be/pkg/progress"

	pktNats "decidely-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController      controller.IAuthController
	ProgressController  controller.IProgressController
	ScenarioController  controller.IScenarioController
	ChatController      controller.IChatController
	JournalController   controller.IJournalController
	CoachController     controller.ICoachController
	UserController      controller.IUserController
	CommunityController controller.ICommunityController
	InsightController   controller.IInsightController

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	NotificationService service.INotificationService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	RelayHandler        *handler.RelayHandler
	WebSocketHub        *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c := &Container{Logger: sysLogger}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// NATS
	var eventPublisher events.Publisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		c.closers = append(c.closers, natsSub.Close)
	}

	// Redis
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis, relay runs single-instance: %v", err)
			_ = rdb.Close()
			rdb = nil
		} else {
			c.closers = append(c.closers, func() { _ = rdb.Close() })
		}
	}

	// LLM
	var llmProvider llm.LLMProvider
	llmProvider, err = factory.NewLLMProvider(factory.Config{
		Provider:      cfg.Ai.LLMProvider,
		Model:         cfg.Ai.LLMModel,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		OpenRouterURL: cfg.Ai.OpenRouterURL,
		APIKey:        cfg.Ai.OpenRouterAPIKey,
		Referer:       cfg.App.ClientURL,
	})
	if err != nil {
		log.Printf("[WARN] LLM provider unavailable, coach disabled: %v", err)
		llmProvider = nil
	} else {
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}

	// 3. In-memory stores
	scenarioCache := memory.NewScenarioCache(memory.DefaultScenarioTTL)
	coachQuota := memory.NewCoachQuota(cfg.Coach.PerHour, cfg.Coach.PerDay)

	// 4. Relay hub
	wsLogger := logger.NewIsolatedLogger("logs/relay.log")
	wsHub := websocket.NewHub(rdb, service.NewThreadAccess(uowFactory), websocket.Options{
		InstanceID:     cfg.App.InstanceID,
		RedisChannel:   cfg.Relay.RedisChannel,
		SendBuffer:     cfg.Relay.SendBuffer,
		MaxMessageSize: cfg.Relay.MaxMessageSize,
	}, wsLogger)

	// 5. Services
	engines := progress.NewEngines(cfg.Progress.Profiles)
	location := engines[progress.ProfileScenario].Config().Location

	publisherService := service.NewPublisherService(cfg.App.AttemptsTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.App.AttemptsTopic, uowFactory, sysLogger)

	authService := service.NewAuthService(uowFactory, cfg.App.JwtSecret, cfg.App.JwtTTL)
	progressService := service.NewProgressService(uowFactory, engines, scenarioCache, publisherService, eventPublisher, sysLogger)
	scenarioService := service.NewScenarioService(uowFactory, scenarioCache, eventPublisher, cfg.App.ClientURL, location, sysLogger)
	chatService := service.NewChatService(uowFactory, scenarioCache, wsHub, sysLogger)
	journalService := service.NewJournalService(uowFactory)
	coachService := service.NewCoachService(llmProvider, coachQuota, sysLogger)
	userService := service.NewUserService(uowFactory, progressService, eventPublisher, sysLogger)
	communityService := service.NewCommunityService(uowFactory)
	insightService := service.NewInsightService(uowFactory, scenarioCache, llmProvider, coachQuota, sysLogger)

	// Notification Domain
	notifRepo := implementation.NewNotificationRepository(db)
	notifService := service.NewNotificationService(notifRepo, natsSub, wsHub, wsLogger) // Hub implements NotificationDelivery

	// 6. Controllers
	c.AuthController = controller.NewAuthController(authService)
	c.ProgressController = controller.NewProgressController(progressService)
	c.ScenarioController = controller.NewScenarioController(scenarioService)
	c.ChatController = controller.NewChatController(chatService)
	c.JournalController = controller.NewJournalController(journalService)
	c.CoachController = controller.NewCoachController(coachService)
	c.UserController = controller.NewUserController(userService)
	c.CommunityController = controller.NewCommunityController(communityService)
	c.InsightController = controller.NewInsightController(insightService)

	c.NotificationHandler = handler.NewNotificationHandler(notifService, eventPublisher, wsLogger,
		handler.WithEventTrigger(cfg.App.Environment != "production"))
	c.RelayHandler = handler.NewRelayHandler(wsHub, cfg.App.JwtSecret, wsLogger)
	c.WebSocketHub = wsHub
	c.ConsumerService = consumerService
	c.NotificationService = notifService

	return c
}

// Start launches the background workers. They stop when ctx is cancelled.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)
	c.NotificationService.Start(ctx)
	return c.ConsumerService.Consume(ctx)
}

// Close releases broker and cache connections in reverse order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
