// Package telegram exposes the conversation as a Telegram chat bot.
package telegram

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/futig/spec-copilot/internal/config"
	"github.com/futig/spec-copilot/internal/telegram/bot"
	"github.com/futig/spec-copilot/internal/telegram/handlers"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot initializes the telegram bot. Every chat maps to one conversation thread.
func NewBot(cfg *config.TelegramConfig, sessionUC handlers.SessionUsecase, logger *zap.Logger) (Bot, error) {
	b, err := bot.New(cfg, sessionUC, logger)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	logger.Info("telegram bot initialized successfully")
	return b, nil
}
