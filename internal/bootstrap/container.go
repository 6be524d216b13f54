package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tigernone/corpusqa/internal/config"
	"github.com/tigernone/corpusqa/internal/controller"
	"github.com/tigernone/corpusqa/internal/pkg/logger"
	"github.com/tigernone/corpusqa/internal/repository/contract"
	"github.com/tigernone/corpusqa/internal/repository/implementation"
	"github.com/tigernone/corpusqa/internal/repository/memory"
	redisrepo "github.com/tigernone/corpusqa/internal/repository/redis"
	"github.com/tigernone/corpusqa/internal/service"
	"github.com/tigernone/corpusqa/pkg/database"
	"github.com/tigernone/corpusqa/pkg/embedding"
	"github.com/tigernone/corpusqa/pkg/events"
	"github.com/tigernone/corpusqa/pkg/keywords"
	"github.com/tigernone/corpusqa/pkg/llm"
	"github.com/tigernone/corpusqa/pkg/nats"
	"github.com/tigernone/corpusqa/pkg/retrieval"
)

// Container wires every component and owns their lifecycles.
type Container struct {
	Cfg *config.Config
	Log *zap.Logger
	DB  *gorm.DB

	PubSub *gochannel.GoChannel
	Bus    *nats.Publisher
	Sub    *nats.Subscriber

	SessionRepo  contract.SessionRepository
	SentenceRepo contract.SentenceRepository
	DocumentRepo contract.DocumentRepository

	Engine *retrieval.Engine

	IngestService   service.IIngestService
	QAService       service.IQAService
	ConsumerService service.IConsumerService

	CorpusController controller.ICorpusController
	QAController     controller.IQAController

	janitorStop chan struct{}
}

func NewContainer(cfg *config.Config) (*Container, error) {
	log := logger.New(cfg.App.LogFilePath, cfg.App.Environment == "production")

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sentenceRepo := implementation.NewSentenceRepository(db)
	documentRepo := implementation.NewDocumentRepository(db)

	sessionRepo, err := buildSessionRepo(cfg)
	if err != nil {
		return nil, err
	}

	embedProvider, err := buildEmbeddingProvider(cfg)
	if err != nil {
		return nil, err
	}

	var llmProvider llm.Provider
	if cfg.Ai.LLMEnabled {
		llmProvider, err = llm.NewProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL)
		if err != nil {
			return nil, fmt.Errorf("building llm provider: %w", err)
		}
	}

	fw := retrieval.DefaultFunctionWords()
	if cfg.Retrieval.FunctionWordsFile != "" {
		fw, err = retrieval.LoadFunctionWords(cfg.Retrieval.FunctionWordsFile)
		if err != nil {
			return nil, fmt.Errorf("loading function words: %w", err)
		}
	}

	var synonyms retrieval.SynonymProvider
	if llmProvider != nil {
		synonyms = keywords.NewLLMSynonyms(llmProvider)
	}

	engine, err := retrieval.NewEngine(
		sentenceRepo,
		embedding.QueryEmbedder{Provider: embedProvider},
		synonyms,
		retrieval.Config{
			BatchSize:           cfg.Retrieval.BatchSize,
			SemanticCount:       cfg.Retrieval.SemanticCount,
			QueryTimeout:        cfg.Retrieval.QueryTimeout,
			FunctionWords:       fw,
			SimilarityThreshold: cfg.Retrieval.SimilarityThreshold,
		},
		retrieval.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("building retrieval engine: %w", err)
	}

	var bus *nats.Publisher
	var sub *nats.Subscriber
	if cfg.App.NatsEnabled {
		bus, err = nats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to NATS: %w", err)
		}
		sub, err = nats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			return nil, fmt.Errorf("connecting NATS subscriber: %w", err)
		}
		// Sessions reference sentences of the old corpus; when any replica
		// replaces it, every replica flushes its session store.
		err = sub.Subscribe(nats.SubjectFor(events.TypeCorpusReplaced), "session-invalidator",
			sessionFlushHandler(sessionRepo, log))
		if err != nil {
			return nil, fmt.Errorf("subscribing to corpus events: %w", err)
		}
	}

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})

	extractor := keywords.NewExtractor(llmProvider, fw, log)

	ingestService := service.NewIngestService(
		sentenceRepo, documentRepo, sessionRepo,
		pubSub, cfg.App.EmbedTopicName, bus, log)
	qaService := service.NewQAService(engine, sessionRepo, extractor, llmProvider, log)
	consumerService := service.NewConsumerService(
		pubSub, cfg.App.EmbedTopicName, sentenceRepo, embedProvider, bus, log)

	return &Container{
		Cfg:              cfg,
		Log:              log,
		DB:               db,
		PubSub:           pubSub,
		Bus:              bus,
		Sub:              sub,
		SessionRepo:      sessionRepo,
		SentenceRepo:     sentenceRepo,
		DocumentRepo:     documentRepo,
		Engine:           engine,
		IngestService:    ingestService,
		QAService:        qaService,
		ConsumerService:  consumerService,
		CorpusController: controller.NewCorpusController(ingestService),
		QAController:     controller.NewQAController(qaService),
		janitorStop:      make(chan struct{}),
	}, nil
}

// sessionFlushHandler drops every session when the corpus they were built
// against is replaced.
func sessionFlushHandler(sessions contract.SessionRepository, log *zap.Logger) nats.EventHandler {
	return func(ctx context.Context, _ events.Event) error {
		if err := sessions.ClearAll(ctx); err != nil {
			return err
		}
		log.Info("sessions cleared after corpus replacement")
		return nil
	}
}

func buildSessionRepo(cfg *config.Config) (contract.SessionRepository, error) {
	switch cfg.Sessions.Backend {
	case "redis":
		opts, err := goredis.ParseURL(cfg.Sessions.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		return redisrepo.NewSessionStore(goredis.NewClient(opts), cfg.Sessions.Timeout), nil
	case "", "memory":
		return memory.NewSessionStore(cfg.Sessions.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported session backend: %s", cfg.Sessions.Backend)
	}
}

func buildEmbeddingProvider(cfg *config.Config) (embedding.Provider, error) {
	switch cfg.Ai.EmbeddingProvider {
	case "gemini":
		return embedding.NewGeminiProvider(cfg.Ai.GeminiApiKey), nil
	case "", "ollama":
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}
}

// StartJanitor sweeps expired sessions in the background until Close.
func (c *Container) StartJanitor(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := c.SessionRepo.EvictExpired(context.Background())
				if err != nil {
					c.Log.Warn("session eviction failed", zap.Error(err))
					continue
				}
				if n > 0 {
					c.Log.Info("expired sessions evicted", zap.Int("count", n))
				}
			case <-c.janitorStop:
				return
			}
		}
	}()
}

func (c *Container) Close() {
	close(c.janitorStop)
	if c.Sub != nil {
		c.Sub.Close()
	}
	if c.Bus != nil {
		c.Bus.Close()
	}
	if c.PubSub != nil {
		_ = c.PubSub.Close()
	}
	if sqlDB, err := c.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = c.Log.Sync()
}
