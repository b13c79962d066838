package bootstrap

import (
	"log"

	"jane-proxy-be/internal/config"
	"jane-proxy-be/internal/controller"
	"jane-proxy-be/internal/pkg/logger"
	"jane-proxy-be/internal/repository/unitofwork"
	"jane-proxy-be/internal/service"
	"jane-proxy-be/pkg/enrich"
	"jane-proxy-be/pkg/llm/factory"
	"jane-proxy-be/pkg/persona"

	pktNats "jane-proxy-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController    controller.IChatController
	BillingController controller.IBillingController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// The provider relay keeps its own log file so token traffic does not
	// drown the application log.
	relayLogger := logger.NewIsolatedLogger("logs/provider.log")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 3. Providers
	llmProvider, err := factory.NewLLMProvider(
		cfg.Provider.Type,
		cfg.Provider.Model,
		cfg.Provider.BaseURL,
		cfg.Provider.APIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Provider.Type, cfg.Provider.Model)

	registry := persona.NewRegistry()

	fetcher := enrich.NewFetcher(cfg.Enrich.Enabled, cfg.Enrich.Allowlist, nil)
	if fetcher.Enabled() {
		log.Printf("[INFO] Web enrichment enabled (%d allowed origins)", len(cfg.Enrich.Allowlist))
	}

	// 4. Services
	publisherService := service.NewPublisherService(cfg.App.LicenseEventTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.LicenseEventTopic,
		uowFactory,
	)

	chatService := service.NewChatService(
		uowFactory,
		llmProvider,
		registry,
		fetcher,
		sysLogger,
		relayLogger,
	)
	licenseService := service.NewLicenseService(uowFactory, publisherService, natsPub, sysLogger)

	// 5. Controllers
	chatController := controller.NewChatController(chatService, sysLogger)
	billingController := controller.NewBillingController(licenseService)

	return &Container{
		ChatController:    chatController,
		BillingController: billingController,
		ConsumerService:   consumerService,
	}
}
