package callback

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/spec-copilot/internal/config"
	"github.com/futig/spec-copilot/internal/entity"
	"github.com/futig/spec-copilot/internal/integration/common"
	pkghttp "github.com/futig/spec-copilot/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.CallbackConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.CallbackConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// SendFinalSpec delivers the finished specification to the callback URL
func (c *Connector) SendFinalSpec(ctx context.Context, callbackURL string, threadID string, spec *entity.FinalSpec) {
	err := c.Send(ctx, callbackURL, threadID, &entity.CallbackEvent{
		Event: entity.CallbackEventTypeFinalSpec,
		Data:  spec,
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send final spec callback", zap.Error(err))
	}
}

// SendError sends an error event to the specified callback URL
func (c *Connector) SendError(ctx context.Context, callbackURL string, threadID string, message string, details map[string]any) {
	err := c.Send(ctx, callbackURL, threadID, &entity.CallbackEvent{
		Event: entity.CallbackEventTypeError,
		Data: &entity.CallbackErrorData{
			Error: entity.CallbackErrorDetails{
				Message: message,
				Details: details,
			},
		},
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send error callback", zap.Error(err))
	}
}

func (c *Connector) Send(ctx context.Context, callbackURL string, threadID string, event *entity.CallbackEvent) error {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	ctxzap.Debug(ctx, "sending callback event",
		zap.String("event_type", string(event.Event)),
		zap.String("callback_url", callbackURL),
		zap.String("thread_id", threadID),
		zap.String("timestamp", event.Timestamp),
	)

	opts := []pkghttp.RequestOpt{
		pkghttp.WithHeader("X-Thread-ID", threadID),
		pkghttp.WithURL(callbackURL),
	}

	err := c.connector.DoRequestWithRetry(ctx, c.config.Retry.ToRetryOptions(), http.MethodPost, "", event, nil, opts...)
	if err != nil {
		return fmt.Errorf("failed to send callback, event_type: %s, url: %s, error: %w", string(event.Event), callbackURL, err)
	}

	ctxzap.Info(ctx, "callback sent successfully",
		zap.String("event_type", string(event.Event)),
		zap.String("callback_url", callbackURL),
		zap.String("thread_id", threadID),
	)
	return nil
}
