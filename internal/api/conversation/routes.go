package conversation

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers conversation routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/chat", h.Chat)
	r.Get("/schemas", h.ListSchemas)

	r.Route("/conversations/{thread_id}", func(r chi.Router) {
		r.Get("/", h.GetConversation)
		r.Get("/spec", h.GetFinalSpec)
		r.Delete("/", h.DeleteConversation)
	})
}
