package repository

import (
	"context"

	"github.com/futig/spec-copilot/internal/entity"
)

// ConversationRepository persists conversation state keyed by thread id.
// Get returns entity.ErrConversationNotFound for unknown threads.
type ConversationRepository interface {
	Get(ctx context.Context, threadID string) (*entity.ConversationState, error)
	Save(ctx context.Context, state *entity.ConversationState) error
	Delete(ctx context.Context, threadID string) error
}
