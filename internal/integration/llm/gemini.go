package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/futig/spec-copilot/internal/config"
	"github.com/futig/spec-copilot/internal/entity"
)

// GeminiConnector completes prompts with the Gemini API.
type GeminiConnector struct {
	cli    *genai.Client
	config config.LLMConnectorConfig
	logger *zap.Logger
}

func NewGeminiConnector(ctx context.Context, cfg config.LLMConnectorConfig, logger *zap.Logger) (*GeminiConnector, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiConnector{
		cli:    cli,
		config: cfg,
		logger: logger,
	}, nil
}

// Complete maps system messages to the system instruction and the dialogue to
// user and model turns.
func (g *GeminiConnector) Complete(ctx context.Context, messages []entity.Message) (string, error) {
	system, contents := toGeminiContents(messages)
	if len(contents) == 0 {
		return "", fmt.Errorf("%w: prompt has no user or assistant turns", entity.ErrOracleMalformed)
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(g.config.Temperature)),
		MaxOutputTokens: int32(g.config.MaxTokens),
	}
	if system != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	ctxzap.Debug(ctx, "requesting gemini completion",
		zap.String("model", g.config.GeminiModel),
		zap.Int("turns", len(contents)),
	)

	resp, err := g.cli.Models.GenerateContent(ctx, g.config.GeminiModel, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %w", entity.ErrOracleUnavailable, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: gemini returned no text", entity.ErrOracleMalformed)
	}

	return text, nil
}

func toGeminiContents(messages []entity.Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case entity.RoleSystem:
			system = append(system, m.Content)
		case entity.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	return strings.Join(system, "\n\n"), contents
}
