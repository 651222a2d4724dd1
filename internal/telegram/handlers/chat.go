package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/spec-copilot/internal/entity"
	"github.com/futig/spec-copilot/internal/pkg/formatter"
	"github.com/futig/spec-copilot/internal/pkg/logger"
	"github.com/futig/spec-copilot/internal/telegram/render"
)

// ChatHandler relays chat messages to the conversation and answers bot commands
type ChatHandler struct {
	bot        Sender
	sender     *MessageSender
	sessionUC  SessionUsecase
	formatters *formatter.Factory
	logger     *zap.Logger
}

func NewChatHandler(bot Sender, sessionUC SessionUsecase, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		bot:        bot,
		sender:     NewMessageSender(bot, logger),
		sessionUC:  sessionUC,
		formatters: formatter.NewFactory(),
		logger:     logger,
	}
}

// Handle processes one normalized message
func (h *ChatHandler) Handle(ctx context.Context, msg *Message) error {
	threadID := ThreadID(msg.ChatID)
	ctx = logger.WithThread(ctx, threadID)

	switch msg.Command {
	case "":
		return h.handleText(ctx, msg, threadID)
	case "start":
		return h.handleStart(ctx, msg, threadID)
	case "reset":
		return h.handleReset(ctx, msg, threadID)
	case "spec":
		return h.handleSpec(ctx, msg, threadID)
	case "help":
		return h.sender.Send(msg.ChatID, render.MsgHelp)
	default:
		return h.sender.Send(msg.ChatID, render.MsgUnknownCommand)
	}
}

func (h *ChatHandler) handleText(ctx context.Context, msg *Message, threadID string) error {
	ctx = logger.WithAction(ctx, "telegram-chat")

	if strings.TrimSpace(msg.Text) == "" {
		return h.sender.Send(msg.ChatID, render.MsgTextOnly)
	}

	typing := NewTypingNotifier(h.bot, msg.ChatID, h.logger)
	typing.Start(ctx)
	resp, err := h.sessionUC.Chat(ctx, &entity.ChatRequest{
		Message:  msg.Text,
		ThreadID: threadID,
	})
	typing.Stop()

	if err != nil {
		return fmt.Errorf("chat turn: %w", err)
	}

	if err := h.sender.Send(msg.ChatID, resp.Response); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}

	if resp.IsFinal {
		ctxzap.Info(ctx, "specification finished in telegram")
		return h.sender.Send(msg.ChatID, render.MsgSpecReady)
	}

	return nil
}

func (h *ChatHandler) handleStart(ctx context.Context, msg *Message, threadID string) error {
	if err := h.sessionUC.ResetConversation(ctx, threadID); err != nil && !errors.Is(err, entity.ErrConversationNotFound) {
		return fmt.Errorf("reset conversation: %w", err)
	}
	return h.sender.Send(msg.ChatID, render.MsgWelcome)
}

func (h *ChatHandler) handleReset(ctx context.Context, msg *Message, threadID string) error {
	err := h.sessionUC.ResetConversation(ctx, threadID)
	switch {
	case errors.Is(err, entity.ErrConversationNotFound):
		return h.sender.Send(msg.ChatID, render.MsgNothingToReset)
	case err != nil:
		return fmt.Errorf("reset conversation: %w", err)
	default:
		return h.sender.Send(msg.ChatID, render.MsgReset)
	}
}

// handleSpec sends the final specification. "/spec pdf" or "/spec json" pick the format.
func (h *ChatHandler) handleSpec(ctx context.Context, msg *Message, threadID string) error {
	format := entity.FormatMarkdown
	if arg := strings.ToLower(strings.TrimSpace(msg.CommandArgs)); arg != "" {
		format = entity.ResultFormat(arg)
	}

	fmtr, err := h.formatters.Create(format)
	if err != nil {
		return h.sender.Send(msg.ChatID, "Supported formats: markdown, json, docx, pdf")
	}

	spec, err := h.sessionUC.GetFinalSpec(ctx, threadID)
	if errors.Is(err, entity.ErrNoResult) || errors.Is(err, entity.ErrConversationNotFound) {
		return h.sender.Send(msg.ChatID, render.MsgSpecNotReady)
	}
	if err != nil {
		return fmt.Errorf("get final spec: %w", err)
	}

	data, err := fmtr.Format(spec)
	if err != nil {
		return fmt.Errorf("format final spec: %w", err)
	}

	return h.sender.SendDocument(msg.ChatID, render.SpecFilename(msg.ChatID, fmtr.FileExtension()), data, "Challenge specification")
}
