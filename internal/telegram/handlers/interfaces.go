package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/futig/spec-copilot/internal/entity"
)

// SessionUsecase is the part of the session boundary the bot drives
type SessionUsecase interface {
	Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error)
	GetFinalSpec(ctx context.Context, threadID string) (*entity.FinalSpec, error)
	ResetConversation(ctx context.Context, threadID string) error
}

// Sender is satisfied by *tgbotapi.BotAPI
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}
