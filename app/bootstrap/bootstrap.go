package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/vlabhub/labchat-go/internal/auth"
	"github.com/vlabhub/labchat-go/internal/config"
	"github.com/vlabhub/labchat-go/internal/database"
	"github.com/vlabhub/labchat-go/internal/kafka"
	"github.com/vlabhub/labchat-go/internal/llm"
	"github.com/vlabhub/labchat-go/internal/logger"
	"github.com/vlabhub/labchat-go/internal/retrieval"
	"github.com/vlabhub/labchat-go/internal/services"
	"github.com/vlabhub/labchat-go/internal/storage"
	"github.com/vlabhub/labchat-go/internal/websearch"
)

// App encapsulates lifecycle resources that need to be cleaned up on shutdown.
type App struct {
	cleanupTasks []func() error

	ChatService      *services.ChatService
	RetrievalService *services.RetrievalService
	JWTService       *auth.JWTService
	Metrics          *services.Metrics
}

// Init bootstraps configuration, logger, database connections and the
// question answering pipeline required by the Beego application.
func Init() (*App, error) {
	// Load environment variables from .env if present (non-fatal if missing).
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if err := logger.InitLogger(); err != nil {
		return nil, err
	}

	if err := config.LoadConfig(); err != nil {
		return nil, err
	}
	cfg := config.AppConfig

	app := &App{}

	// Database (required).
	if _, err := database.InitDB(); err != nil {
		return nil, err
	}
	app.cleanupTasks = append(app.cleanupTasks, database.CloseDB)

	// Redis (optional). Failure shouldn't block the app.
	if _, err := database.InitRedis(); err != nil {
		logger.Warn("Failed to initialize Redis, answer cache disabled", zap.Error(err))
	} else {
		app.cleanupTasks = append(app.cleanupTasks, database.CloseRedis)
	}

	// Kafka (optional).
	if cfg.Kafka.Enabled {
		if err := kafka.InitProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic); err != nil {
			logger.Warn("Failed to initialize Kafka producer, usage events disabled", zap.Error(err))
		} else {
			app.cleanupTasks = append(app.cleanupTasks, func() error {
				return kafka.GetProducer().Close()
			})
		}
	}

	// Object storage for lab figures (optional).
	var minioService *storage.MinIOService
	if cfg.Storage.Endpoint != "" {
		svc, err := storage.NewMinIOService(cfg.Storage)
		if err != nil {
			logger.Warn("Failed to initialize MinIO, lab figures disabled", zap.Error(err))
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := svc.EnsureBucket(ctx); err != nil {
				logger.Warn("Failed to ensure MinIO bucket", zap.Error(err))
			}
			cancel()
			minioService = svc
		}
	}

	// Retrieval stack: embedder + vector store + fulltext indexer.
	embedder := retrieval.NewEmbedder(cfg)
	vectorStore, err := retrieval.NewVectorStore(cfg)
	if err != nil {
		logger.Warn("Failed to initialize vector store, falling back to memory", zap.Error(err))
		vectorStore = retrieval.NewMemoryVectorStore()
	}
	indexer, err := retrieval.NewElasticsearchIndexer(
		cfg.Retrieval.Elasticsearch.Addresses,
		cfg.Retrieval.Elasticsearch.Username,
		cfg.Retrieval.Elasticsearch.Password,
		cfg.Retrieval.Elasticsearch.APIKey,
		cfg.Retrieval.Elasticsearch.IndexPrefix,
	)
	if err != nil {
		logger.Warn("Failed to initialize Elasticsearch, fulltext search disabled", zap.Error(err))
		indexer = &retrieval.NoopFulltextIndexer{}
	}

	retriever := retrieval.NewHybridRetriever(indexer, vectorStore, embedder)
	app.RetrievalService = services.NewRetrievalService(retriever, cfg)

	// LLM provider with model fallback chain.
	provider := llm.NewProvider(cfg)
	if !provider.Ready() {
		logger.Warn("LLM provider not configured, RAG answers will fall back")
	}

	app.Metrics = services.NewMetrics(prometheus.DefaultRegisterer)
	app.JWTService = auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, 24*time.Hour)

	app.ChatService = services.NewChatService(services.ChatServiceOptions{
		Retriever:   app.RetrievalService,
		Images:      services.NewImageService(database.DB, minioService),
		Provider:    provider,
		Search:      websearch.NewClient(cfg.WebSearch),
		DB:          database.DB,
		Cache:       database.RedisClient,
		CacheTTL:    time.Duration(cfg.Redis.TTL) * time.Second,
		Metrics:     app.Metrics,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
	})

	logger.Info("labchat bootstrap complete",
		zap.String("ai_provider", provider.Name()),
		zap.String("vector_store", cfg.Retrieval.VectorStore.Provider))

	return app, nil
}

// Shutdown runs cleanup tasks in reverse registration order.
func (a *App) Shutdown() {
	for i := len(a.cleanupTasks) - 1; i >= 0; i-- {
		if err := a.cleanupTasks[i](); err != nil {
			logger.Error("cleanup task failed", zap.Error(err))
		}
	}
	logger.Sync()
}
