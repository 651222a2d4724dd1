package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	pkgRetry "github.com/futig/spec-copilot/internal/pkg/retry"
)

const (
	LLMProviderHTTP   = "http"
	LLMProviderGemini = "gemini"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr      string        `env:"SERVER_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database configuration, empty URL keeps conversations in memory
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// External service configurations
	LLMConnectorCfg      LLMConnectorConfig      `envPrefix:"LLM_"`
	RAGConnectorCfg      RAGConnectorConfig      `envPrefix:"RAG_"`
	CallbackConnectorCfg CallbackConnectorConfig `envPrefix:"CALLBACK_"`

	// Conversation core configuration
	ConversationCfg ConversationConfig `envPrefix:"CONVERSATION_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Tracing writes spans to stdout when enabled
	TracingEnabled bool `env:"TRACING_ENABLED" envDefault:"false"`

	// Metrics are exported to stdout on every interval when enabled
	MetricsEnabled  bool          `env:"METRICS_ENABLED" envDefault:"false"`
	MetricsInterval time.Duration `env:"METRICS_INTERVAL" envDefault:"60s"`

	// Telegram bot configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

type ConversationConfig struct {
	TurnTimeout time.Duration `env:"TURN_TIMEOUT" envDefault:"60s"`
	SchemaDir   string        `env:"SCHEMA_DIR"`
	StoreTTL    time.Duration `env:"STORE_TTL" envDefault:"24h"`

	MaxMessageLength int `env:"MAX_MESSAGE_LENGTH" envDefault:"8000"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string `env:"BOT_TOKEN"`
	UpdateTimeout      int    `env:"UPDATE_TIMEOUT" envDefault:"60"`
	MaxConcurrentUsers int    `env:"MAX_CONCURRENT_USERS" envDefault:"100"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int    `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"` // seconds
}

type LLMConnectorConfig struct {
	HTTPClientConfig
	Provider     string               `env:"PROVIDER" envDefault:"http"`
	ChatEndpoint string               `env:"CHAT_ENDPOINT" envDefault:"/v1/chat/completions"`
	Model        string               `env:"MODEL" envDefault:"gpt-4o-mini"`
	Temperature  float64              `env:"TEMPERATURE" envDefault:"0.7"`
	MaxTokens    int                  `env:"MAX_TOKENS" envDefault:"1024"`
	GeminiAPIKey string               `env:"GEMINI_API_KEY"`
	GeminiModel  string               `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	Retry        pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type RAGConnectorConfig struct {
	HTTPClientConfig
	SearchEndpoint string               `env:"SEARCH_ENDPOINT" envDefault:"/search"`
	CacheSize      int                  `env:"CACHE_SIZE" envDefault:"1024"`
	Retry          pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type CallbackConnectorConfig struct {
	HTTPClientConfig
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"5s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"30s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Variables may be set externally, a missing file is fine.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads and validates the configuration from the process environment.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

func (c *Config) TelegramEnabled() bool {
	return c.TelegramCfg.BotToken != ""
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.ConversationCfg.TurnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("CONVERSATION_TURN_TIMEOUT must be positive, got %s", cfg.ConversationCfg.TurnTimeout))
	}

	if cfg.ConversationCfg.StoreTTL < 0 {
		errors = append(errors, fmt.Sprintf("CONVERSATION_STORE_TTL must not be negative, got %s", cfg.ConversationCfg.StoreTTL))
	}

	// External services are only needed when mocks are off
	if !cfg.EnableMocks {
		switch cfg.LLMConnectorCfg.Provider {
		case LLMProviderHTTP:
			if cfg.LLMConnectorCfg.Url == "" {
				errors = append(errors, "LLM_SERVICE_URL is required for the http provider")
			}
		case LLMProviderGemini:
			if cfg.LLMConnectorCfg.GeminiAPIKey == "" {
				errors = append(errors, "LLM_GEMINI_API_KEY is required for the gemini provider")
			}
		default:
			errors = append(errors, fmt.Sprintf("LLM_PROVIDER must be %q or %q, got %q", LLMProviderHTTP, LLMProviderGemini, cfg.LLMConnectorCfg.Provider))
		}

		if cfg.RAGConnectorCfg.Url == "" {
			errors = append(errors, "RAG_SERVICE_URL is required when mocks are disabled")
		}
	}

	if cfg.MetricsEnabled && cfg.MetricsInterval <= 0 {
		errors = append(errors, fmt.Sprintf("METRICS_INTERVAL must be positive, got %s", cfg.MetricsInterval))
	}

	if cfg.ConversationCfg.MaxMessageLength < 0 {
		errors = append(errors, fmt.Sprintf("CONVERSATION_MAX_MESSAGE_LENGTH must not be negative, got %d", cfg.ConversationCfg.MaxMessageLength))
	}

	if cfg.LLMConnectorCfg.Temperature < 0 || cfg.LLMConnectorCfg.Temperature > 2 {
		errors = append(errors, fmt.Sprintf("LLM_TEMPERATURE must be between 0 and 2, got %v", cfg.LLMConnectorCfg.Temperature))
	}

	if cfg.RAGConnectorCfg.CacheSize < 0 {
		errors = append(errors, fmt.Sprintf("RAG_CACHE_SIZE must not be negative, got %d", cfg.RAGConnectorCfg.CacheSize))
	}

	// Validate Telegram configuration
	if cfg.TelegramEnabled() {
		if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
			errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
		}

		if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
			errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
		}

		if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
			errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
		}
	}

	// Validate Database configuration
	if cfg.UsePostgres() {
		if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
			errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
		}

		if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
			errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
