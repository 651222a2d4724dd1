package conversation

import (
	"context"

	"github.com/futig/spec-copilot/internal/entity"
)

type SessionUsecase interface {
	Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error)
	GetConversation(ctx context.Context, threadID string) (*entity.ConversationDTO, error)
	GetFinalSpec(ctx context.Context, threadID string) (*entity.FinalSpec, error)
	ResetConversation(ctx context.Context, threadID string) error
	ListSchemas(ctx context.Context) []entity.SchemaSummary
}
