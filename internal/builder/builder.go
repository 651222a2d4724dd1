package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/futig/spec-copilot/internal/api"
	conversationapi "github.com/futig/spec-copilot/internal/api/conversation"
	"github.com/futig/spec-copilot/internal/config"
	"github.com/futig/spec-copilot/internal/integration/callback"
	"github.com/futig/spec-copilot/internal/integration/llm"
	"github.com/futig/spec-copilot/internal/integration/rag"
	"github.com/futig/spec-copilot/internal/metrics"
	"github.com/futig/spec-copilot/internal/pkg/validator"
	"github.com/futig/spec-copilot/internal/repository"
	"github.com/futig/spec-copilot/internal/schema"
	"github.com/futig/spec-copilot/internal/telegram"
	"github.com/futig/spec-copilot/internal/usecase/conversation"
	"github.com/futig/spec-copilot/internal/usecase/session"
)

// Headroom between the turn deadline and the HTTP deadlines, so a timed out
// turn can still be saved and answered.
const requestHeadroom = 5 * time.Second

// core holds the transport independent part of the application
type core struct {
	sessionUC      *session.SessionUsecase
	db             *pgxpool.Pool
	tracerShutdown func(context.Context) error
	meterShutdown  func(context.Context) error
	logger         *zap.Logger
}

func (c *core) close(ctx context.Context) {
	if c.db != nil {
		c.logger.Info("Closing database connections")
		c.db.Close()
	}

	if c.tracerShutdown != nil {
		if err := c.tracerShutdown(ctx); err != nil {
			c.logger.Warn("Tracer shutdown error", zap.Error(err))
		}
	}

	if c.meterShutdown != nil {
		if err := c.meterShutdown(ctx); err != nil {
			c.logger.Warn("Meter shutdown error", zap.Error(err))
		}
	}
}

// Build assembles the HTTP application
func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	c, err := buildCore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	conversationHandler := conversationapi.NewHandler(c.sessionUC, validator.NewValidator(cfg.ConversationCfg))
	logger.Info("API handlers initialized")

	requestTimeout := cfg.ConversationCfg.TurnTimeout + requestHeadroom
	router := api.SetupRouter(conversationHandler, requestTimeout, logger)
	logger.Info("HTTP router configured")

	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      requestTimeout + requestHeadroom,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:          server,
		core:            c,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}, nil
}

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (telegram.Bot, *zap.Logger, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	if !cfg.TelegramEnabled() {
		return nil, nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}

	logger.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
	)

	c, err := buildCore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	bot, err := telegram.NewBot(&cfg.TelegramCfg, c.sessionUC, logger)
	if err != nil {
		c.close(ctx)
		return nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	logger.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &closingBot{Bot: bot, core: c}, logger, nil
}

// closingBot releases the shared resources once the bot has stopped
type closingBot struct {
	telegram.Bot
	core *core
}

func (b *closingBot) Stop() error {
	err := b.Bot.Stop()
	b.core.close(context.Background())
	return err
}

func buildCore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*core, error) {
	c := &core{logger: logger}

	if cfg.TracingEnabled {
		shutdown, err := initTracer()
		if err != nil {
			return nil, fmt.Errorf("init tracer: %w", err)
		}
		c.tracerShutdown = shutdown
		logger.Info("Tracing enabled, spans are written to stdout")
	}

	if cfg.MetricsEnabled {
		shutdown, err := initMeter(cfg.MetricsInterval)
		if err != nil {
			c.close(ctx)
			return nil, fmt.Errorf("init meter: %w", err)
		}
		c.meterShutdown = shutdown
		logger.Info("Metrics enabled, readings are written to stdout",
			zap.Duration("interval", cfg.MetricsInterval))
	}

	catalog, err := schema.LoadDir(cfg.ConversationCfg.SchemaDir, logger)
	if err != nil {
		c.close(ctx)
		return nil, fmt.Errorf("load schemas: %w", err)
	}

	repo, err := setupRepository(ctx, cfg, c, logger)
	if err != nil {
		c.close(ctx)
		return nil, err
	}

	oracle, suggestions, err := setupConnectors(ctx, cfg, logger)
	if err != nil {
		c.close(ctx)
		return nil, err
	}

	turnMetrics, err := metrics.NewTurnMetrics(otel.GetMeterProvider())
	if err != nil {
		c.close(ctx)
		return nil, fmt.Errorf("create metrics: %w", err)
	}

	orchestrator := conversation.NewOrchestrator(oracle, suggestions, catalog,
		conversation.WithRecorder(turnMetrics),
	)

	c.sessionUC = session.NewUsecase(
		repo,
		orchestrator,
		catalog,
		callback.NewConnector(cfg.CallbackConnectorCfg, logger),
		turnMetrics,
		cfg.ConversationCfg.TurnTimeout,
		logger,
	)
	logger.Info("Use cases initialized")

	return c, nil
}

func setupRepository(ctx context.Context, cfg *config.Config, c *core, logger *zap.Logger) (repository.ConversationRepository, error) {
	if !cfg.UsePostgres() {
		logger.Info("DATABASE_URL not set, keeping conversations in memory",
			zap.Duration("ttl", cfg.ConversationCfg.StoreTTL),
		)
		return repository.NewConversationMemory(cfg.ConversationCfg.StoreTTL), nil
	}

	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	c.db = db

	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	return repository.NewConversationPostgres(db), nil
}

func setupConnectors(ctx context.Context, cfg *config.Config, logger *zap.Logger) (conversation.TextOracle, conversation.SuggestionService, error) {
	var oracle conversation.TextOracle
	var searcher rag.Searcher

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		oracle = llm.NewMockConnector(logger)
		searcher = rag.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services",
			zap.String("llm_provider", cfg.LLMConnectorCfg.Provider),
		)

		switch cfg.LLMConnectorCfg.Provider {
		case config.LLMProviderGemini:
			gemini, err := llm.NewGeminiConnector(ctx, cfg.LLMConnectorCfg, logger)
			if err != nil {
				return nil, nil, fmt.Errorf("create gemini connector: %w", err)
			}
			oracle = gemini
		default:
			oracle = llm.NewConnector(cfg.LLMConnectorCfg, logger)
		}

		searcher = rag.NewConnector(cfg.RAGConnectorCfg, logger)
	}

	if cfg.RAGConnectorCfg.CacheSize == 0 {
		return oracle, searcher, nil
	}

	cached, err := rag.NewCachedSearcher(searcher, cfg.RAGConnectorCfg.CacheSize, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create search cache: %w", err)
	}

	return oracle, cached, nil
}
