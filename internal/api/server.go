package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	conversationapi "github.com/futig/spec-copilot/internal/api/conversation"
	"github.com/futig/spec-copilot/internal/api/docs"
	"github.com/futig/spec-copilot/internal/api/middleware"
	"github.com/futig/spec-copilot/internal/pkg/response"
)

// SetupRouter creates and configures the HTTP router.
// requestTimeout should exceed the conversation turn timeout.
func SetupRouter(conversationHandler *conversationapi.Handler, requestTimeout time.Duration, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS)
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"status": "healthy"})
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	conversationapi.RegisterRoutes(r, conversationHandler)

	return r
}
