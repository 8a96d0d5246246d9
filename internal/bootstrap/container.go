package bootstrap

import (
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"

	"grant-insight-be/internal/config"
	"grant-insight-be/internal/controller"
	"grant-insight-be/internal/pkg/logger"
	"grant-insight-be/internal/pkg/mailer"
	"grant-insight-be/internal/repository/implementation"
	"grant-insight-be/internal/repository/unitofwork"
	"grant-insight-be/internal/service"
	"grant-insight-be/pkg/cache"
	"grant-insight-be/pkg/chatcontext"
	"grant-insight-be/pkg/learning"
	"grant-insight-be/pkg/llm/openai"
	"grant-insight-be/pkg/usage"
)

type Container struct {
	// Controllers
	ConciergeController controller.IConciergeController

	// Background services, run from main
	ConsumerService    service.IConsumerService
	MaintenanceService service.IMaintenanceService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	llmLogger := logger.NewIsolatedLogger(cfg.App.LLMLogFilePath)

	// 2. Cache backend: Redis when reachable, process-local otherwise, so a
	// missing Redis only costs cross-instance counter sharing.
	var store cache.Cache
	if redisCache, err := cache.NewRedisCache(cfg.App.RedisURL); err != nil {
		log.Printf("[WARN] Redis unavailable, falling back to in-memory cache: %v", err)
		store = cache.NewMemoryCache()
	} else {
		store = redisCache
	}

	// 3. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	// 4. Budget tracking and generation
	alertMailer := mailer.NewGomailAlertMailer(cfg)
	tracker := usage.NewTracker(store, alertMailer, sysLogger,
		cfg.Concierge.DailyTokenLimit, cfg.Concierge.EmergencyTokenLimit)
	llmProvider := openai.NewOpenAIProvider(cfg.OpenAI, store, llmLogger, tracker)

	// 5. Engines
	snapshotStore := implementation.NewConversationTurnRepository(db)
	contextManager := chatcontext.NewManager(store, snapshotStore)
	learningStore := learning.NewStore(implementation.NewLearningRecordRepository(db), store, sysLogger)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Concierge.LearningTopicName, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.Concierge.LearningTopicName, learningStore, sysLogger)

	conciergeService := service.NewConciergeService(
		cfg.Concierge,
		uowFactory,
		llmProvider,
		tracker,
		contextManager,
		learningStore,
		publisherService,
		store,
		sysLogger,
	)
	searchService := service.NewSearchService(uowFactory, learningStore, sysLogger)
	maintenanceService := service.NewMaintenanceService(uowFactory, learningStore, tracker, sysLogger)

	// 7. Controllers
	conciergeController := controller.NewConciergeController(conciergeService, searchService)

	return &Container{
		ConciergeController: conciergeController,
		ConsumerService:     consumerService,
		MaintenanceService:  maintenanceService,
	}
}
