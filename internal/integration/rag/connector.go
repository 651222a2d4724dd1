package rag

import (
	"context"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/spec-copilot/internal/config"
	"github.com/futig/spec-copilot/internal/entity"
	"github.com/futig/spec-copilot/internal/integration/common"
	pkghttp "github.com/futig/spec-copilot/pkg/http"
)

// Connector queries the similar-specification search service.
type Connector struct {
	config    config.RAGConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.RAGConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Search returns up to limit similar specifications.
// POST {search_endpoint} with {"query", "top_k"}
// Failures are logged and yield an empty result.
func (c *Connector) Search(ctx context.Context, query string, limit int) []entity.SimilarSpec {
	if limit <= 0 {
		return []entity.SimilarSpec{}
	}

	ctxzap.Debug(ctx, "searching similar specs", zap.Int("limit", limit))

	req := &entity.RAGSearchRequest{
		Query: query,
		TopK:  limit,
	}

	var resp entity.RAGSearchResponse
	err := c.connector.DoRequestWithRetry(ctx, c.config.Retry.ToRetryOptions(), http.MethodPost, c.config.SearchEndpoint, req, &resp)
	if err != nil {
		ctxzap.Warn(ctx, "similar spec search failed", zap.Error(err))
		return []entity.SimilarSpec{}
	}

	results := resp.Results
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []entity.SimilarSpec{}
	}

	ctxzap.Debug(ctx, "similar specs found", zap.Int("count", len(results)))
	return results
}
