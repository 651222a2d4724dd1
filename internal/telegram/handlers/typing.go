package handlers

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Telegram shows the typing action for 5 seconds
const typingInterval = 4 * time.Second

// TypingNotifier keeps the "typing" indicator alive while a turn is processed
type TypingNotifier struct {
	bot    Sender
	chatID int64
	logger *zap.Logger

	done chan struct{}
	wg   sync.WaitGroup
}

func NewTypingNotifier(bot Sender, chatID int64, logger *zap.Logger) *TypingNotifier {
	return &TypingNotifier{
		bot:    bot,
		chatID: chatID,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start sends the first indicator immediately and repeats it until Stop or ctx is done
func (t *TypingNotifier) Start(ctx context.Context) {
	t.send()

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				t.send()
			case <-t.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the indicator and waits for the background sender to exit
func (t *TypingNotifier) Stop() {
	close(t.done)
	t.wg.Wait()
}

func (t *TypingNotifier) send() {
	if _, err := t.bot.Request(tgbotapi.NewChatAction(t.chatID, tgbotapi.ChatTyping)); err != nil {
		t.logger.Warn("failed to send typing action",
			zap.Error(err),
			zap.Int64("chat_id", t.chatID),
		)
	}
}
