package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/spec-copilot/internal/config"
	"github.com/futig/spec-copilot/internal/entity"
	"github.com/futig/spec-copilot/internal/integration/common"
	pkghttp "github.com/futig/spec-copilot/pkg/http"
)

// Connector talks to an OpenAI compatible chat completions endpoint.
type Connector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Complete sends the prompt and returns the first choice's content
func (c *Connector) Complete(ctx context.Context, messages []entity.Message) (string, error) {
	ctxzap.Debug(ctx, "requesting chat completion", zap.Int("message_count", len(messages)))

	req := &entity.LLMChatRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}

	var resp entity.LLMChatResponse
	err := c.connector.DoRequestWithRetry(ctx, c.config.Retry.ToRetryOptions(), http.MethodPost, c.config.ChatEndpoint, req, &resp)
	if err != nil {
		return "", fmt.Errorf("%w: chat completion failed: %w", entity.ErrOracleUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: chat completion returned no choices", entity.ErrOracleMalformed)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)

	ctxzap.Debug(ctx, "chat completion received",
		zap.Int("content_length", len(content)),
		zap.String("finish_reason", resp.Choices[0].FinishReason),
	)

	return content, nil
}
