package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/spec-copilot/internal/config"
)

func TestParseDefaultsWithMocks(t *testing.T) {
	t.Setenv("ENABLE_MOCKS", "true")

	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, 60*time.Second, cfg.ConversationCfg.TurnTimeout)
	assert.Equal(t, 24*time.Hour, cfg.ConversationCfg.StoreTTL)
	assert.Equal(t, 8000, cfg.ConversationCfg.MaxMessageLength)
	assert.Equal(t, config.LLMProviderHTTP, cfg.LLMConnectorCfg.Provider)
	assert.Equal(t, uint(3), cfg.LLMConnectorCfg.Retry.Attempts)
	assert.Equal(t, 1024, cfg.RAGConnectorCfg.CacheSize)
	assert.False(t, cfg.UsePostgres())
	assert.False(t, cfg.TelegramEnabled())
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, time.Minute, cfg.MetricsInterval)
}

func TestParseNestedPrefixes(t *testing.T) {
	t.Setenv("ENABLE_MOCKS", "true")
	t.Setenv("CONVERSATION_TURN_TIMEOUT", "15s")
	t.Setenv("LLM_RETRY_ATTEMPTS", "5")
	t.Setenv("RAG_SERVICE_URL", "http://rag:8000")
	t.Setenv("CALLBACK_TIMEOUT", "3s")

	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.ConversationCfg.TurnTimeout)
	assert.Equal(t, uint(5), cfg.LLMConnectorCfg.Retry.Attempts)
	assert.Equal(t, "http://rag:8000", cfg.RAGConnectorCfg.Url)
	assert.Equal(t, 3*time.Second, cfg.CallbackConnectorCfg.RequestTimeout)
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "real connectors need urls",
			env:     map[string]string{},
			wantErr: "LLM_SERVICE_URL",
		},
		{
			name:    "gemini needs a key",
			env:     map[string]string{"LLM_PROVIDER": "gemini", "RAG_SERVICE_URL": "http://rag"},
			wantErr: "LLM_GEMINI_API_KEY",
		},
		{
			name:    "unknown provider",
			env:     map[string]string{"LLM_PROVIDER": "carrier-pigeon", "RAG_SERVICE_URL": "http://rag"},
			wantErr: "LLM_PROVIDER",
		},
		{
			name:    "non positive turn timeout",
			env:     map[string]string{"ENABLE_MOCKS": "true", "CONVERSATION_TURN_TIMEOUT": "0s"},
			wantErr: "CONVERSATION_TURN_TIMEOUT",
		},
		{
			name:    "temperature out of range",
			env:     map[string]string{"ENABLE_MOCKS": "true", "LLM_TEMPERATURE": "3"},
			wantErr: "LLM_TEMPERATURE",
		},
		{
			name:    "telegram burst",
			env:     map[string]string{"ENABLE_MOCKS": "true", "TELEGRAM_BOT_TOKEN": "t", "TELEGRAM_RATE_LIMIT_BURST": "50"},
			wantErr: "TELEGRAM_RATE_LIMIT_BURST",
		},
		{
			name:    "metrics interval",
			env:     map[string]string{"ENABLE_MOCKS": "true", "METRICS_ENABLED": "true", "METRICS_INTERVAL": "0s"},
			wantErr: "METRICS_INTERVAL",
		},
		{
			name:    "database pool",
			env:     map[string]string{"ENABLE_MOCKS": "true", "DATABASE_URL": "postgres://x", "DB_MIN_CONNS": "40", "DB_MAX_CONNS": "10"},
			wantErr: "DB_MIN_CONNS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Parse()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseRejectsMalformedValue(t *testing.T) {
	t.Setenv("ENABLE_MOCKS", "true")
	t.Setenv("CONVERSATION_STORE_TTL", "forever")

	_, err := config.Parse()
	assert.Error(t, err)
}
