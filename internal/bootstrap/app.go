package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"holistica/internal/ai"
	"holistica/internal/app"
	"holistica/internal/cache"
	"holistica/internal/chunker"
	"holistica/internal/config"
	"holistica/internal/model"
	mysqlClient "holistica/internal/platform/mysql"
	rabbitmqClient "holistica/internal/platform/rabbitmq"
	redisClient "holistica/internal/platform/redis"
	"holistica/internal/repository"
	"holistica/internal/vectorstore"
	"holistica/internal/vectorstore/memory"
	"holistica/internal/vectorstore/mysqlstore"
	"holistica/internal/worker"
)

// App wires every dependency once at startup. Components never lazily
// initialize shared clients; construction and teardown happen here.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	MySQL         *gorm.DB // nil unless the mysql vector store driver is selected
	Redis         *redis.Client
	MQConn        *amqp.Connection
	Store         vectorstore.Store
	Library       *app.LibraryService
	Answers       *app.AnswerService
	History       *cache.SearchHistory
	HistoryQueue  *rabbitmqClient.HistoryPublisher
	HistoryWorker *worker.HistoryRecordWorker

	StartedAt time.Time
}

func New(ctx context.Context, logger *zap.Logger) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		StartedAt: time.Now(),
	}

	switch cfg.VectorStore.Driver {
	case "mysql":
		mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, err
		}
		if err := mysqlDB.AutoMigrate(&model.ChunkRecord{}); err != nil {
			return nil, fmt.Errorf("auto migrate chunk table failed: %w", err)
		}
		a.MySQL = mysqlDB
		a.Store = mysqlstore.New(repository.NewChunkRepository(mysqlDB), cfg.RAG.DistanceMetric)
	default:
		a.Store = memory.New(cfg.RAG.DistanceMetric)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	a.Redis = redisCli

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}
	a.MQConn = mqConn

	aiClient := ai.NewClient()
	embedder := ai.NewEmbeddingGateway(aiClient, ai.EmbeddingConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.EmbeddingModel,
	})
	generator := ai.NewGenerator(aiClient, ai.GenerationConfig{
		BaseURL:   cfg.LLM.BaseURL,
		APIKey:    cfg.LLM.APIKey,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxAnswerTokens,
		Timeout:   time.Duration(cfg.LLM.GenerationTimeoutS) * time.Second,
	})

	splitter := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	a.Library = app.NewLibraryService(a.Store, embedder, splitter, cfg.RAG.Collection, logger)
	if err := a.Library.Init(ctx); err != nil {
		return nil, err
	}
	a.Answers = app.NewAnswerService(
		a.Store,
		embedder,
		generator,
		cfg.RAG.Collection,
		cfg.RAG.TopK,
		cfg.RAG.DistanceThreshold,
		logger,
	)

	a.History = cache.NewSearchHistory(
		redisCli,
		cfg.Redis.HistoryKey,
		cfg.Redis.HistoryLimit,
		time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
	)
	a.HistoryQueue = rabbitmqClient.NewHistoryPublisher(mqConn, cfg.RabbitMQ.HistoryQueue)
	a.HistoryWorker = worker.NewHistoryRecordWorker(mqConn, a.History, cfg.RabbitMQ.HistoryQueue, logger)
	if err := a.HistoryWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start history worker failed: %w", err)
	}

	return a, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.HistoryWorker != nil {
		a.HistoryWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
