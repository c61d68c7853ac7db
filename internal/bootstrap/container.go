package bootstrap

import (
	"context"
	"log"

	"travel-assistant-be/internal/config"
	"travel-assistant-be/internal/controller"
	"travel-assistant-be/internal/pkg/logger"
	"travel-assistant-be/internal/repository/contract"
	"travel-assistant-be/internal/repository/implementation"
	"travel-assistant-be/internal/service"
	ws "travel-assistant-be/internal/websocket"
	"travel-assistant-be/pkg/agent"
	"travel-assistant-be/pkg/embedding"
	"travel-assistant-be/pkg/llm/factory"
	"travel-assistant-be/pkg/retrieval"
	"travel-assistant-be/pkg/thread"
	"travel-assistant-be/pkg/websearch"

	pktNats "travel-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	HealthController   controller.IHealthController
	DocumentController controller.IDocumentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

// NewContainer wires the full dependency graph. db may be nil; the chat
// surface then runs without the policy corpus and health reports degraded.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// Redis thread store, with in-memory fallback so conversations still
	// work (per-instance) when Redis is down.
	var threadStore thread.Store
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Falling back to in-memory threads", err)
		threadStore = thread.NewMemoryStore()
	} else {
		threadStore = thread.NewRedisStore(rdb)
	}

	// 5. Corpus
	var chunkRepo contract.PolicyChunkRepository
	var corpusIndex agent.CorpusIndex
	if db != nil {
		chunkRepo = implementation.NewPolicyChunkRepository(db)
		corpusIndex = retrieval.NewIndex(chunkRepo, embeddingProvider, sysLogger, retrieval.Config{
			FetchMultiplier: 5,
			Lambda:          cfg.Rag.MMRLambda,
		})
	} else {
		log.Printf("[WARN] Database unavailable, knowledge base disabled")
	}

	searcher := websearch.NewTavilyClient(cfg.Keys.Tavily)

	// 6. Orchestration
	agentCfg := agent.DefaultConfig()
	agentCfg.TopK = cfg.Rag.RetrievalTopK
	agentCfg.MaxSearchResults = cfg.Rag.SearchMaxResults
	agentCfg.Temperature = cfg.Ai.Temperature

	orchestrator := agent.NewOrchestrator(llmProvider, corpusIndex, searcher, sysLogger, agentCfg)

	// 7. Services
	chatService := service.NewChatService(orchestrator, threadStore, chunkRepo, natsPub, sysLogger, cfg.App.Version)

	// Without a database there is nowhere to store embedded chunks, so the
	// consumer stays off and the ingestion endpoint rejects requests.
	publisherService := service.NewPublisherService(cfg.Keys.IngestTopic, pubSub)
	ingestionService := service.NewIngestionService(publisherService, natsPub, sysLogger, cfg.Rag.ChunkSize, cfg.Rag.ChunkOverlap, chunkRepo != nil)

	var consumerService service.IConsumerService
	if chunkRepo != nil {
		consumerService = service.NewConsumerService(pubSub, cfg.Keys.IngestTopic, chunkRepo, embeddingProvider)
	}

	// 8. Controllers
	streamHandler := ws.NewStreamHandler(chatService, sysLogger)

	return &Container{
		ChatController:     controller.NewChatController(chatService, streamHandler),
		HealthController:   controller.NewHealthController(chatService),
		DocumentController: controller.NewDocumentController(ingestionService),
		ConsumerService:    consumerService,
	}
}
