package handlers_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/futig/spec-copilot/internal/entity"
	"github.com/futig/spec-copilot/internal/telegram/handlers"
	"github.com/futig/spec-copilot/internal/telegram/render"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSender struct {
	mu        sync.Mutex
	texts     []string
	documents []tgbotapi.DocumentConfig
	actions   int
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		s.texts = append(s.texts, v.Text)
	case tgbotapi.DocumentConfig:
		s.documents = append(s.documents, v)
	}
	return tgbotapi.Message{}, nil
}

func (s *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := c.(tgbotapi.ChatActionConfig); ok {
		s.actions++
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type fakeSessions struct {
	chatReq  *entity.ChatRequest
	chatResp *entity.ChatResponse
	chatErr  error
	resetErr error
	resetIDs []string
	spec     *entity.FinalSpec
	specErr  error
}

func (f *fakeSessions) Chat(_ context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error) {
	f.chatReq = req
	return f.chatResp, f.chatErr
}

func (f *fakeSessions) GetFinalSpec(context.Context, string) (*entity.FinalSpec, error) {
	return f.spec, f.specErr
}

func (f *fakeSessions) ResetConversation(_ context.Context, threadID string) error {
	f.resetIDs = append(f.resetIDs, threadID)
	return f.resetErr
}

func TestThreadID(t *testing.T) {
	assert.Equal(t, "tg-42", handlers.ThreadID(42))
	assert.Equal(t, "tg--100123", handlers.ThreadID(-100123))
}

func TestTextRelaysToConversation(t *testing.T) {
	sender := &fakeSender{}
	sessions := &fakeSessions{chatResp: &entity.ChatResponse{Response: "Which platform fits best?"}}
	h := handlers.NewChatHandler(sender, sessions, zap.NewNop())

	err := h.Handle(context.Background(), &handlers.Message{ChatID: 7, Text: "a logo contest"})
	require.NoError(t, err)

	require.NotNil(t, sessions.chatReq)
	assert.Equal(t, "tg-7", sessions.chatReq.ThreadID)
	assert.Equal(t, "a logo contest", sessions.chatReq.Message)
	assert.Equal(t, []string{"Which platform fits best?"}, sender.texts)
	assert.GreaterOrEqual(t, sender.actions, 1)
}

func TestFinalTurnAnnouncesSpec(t *testing.T) {
	sender := &fakeSender{}
	sessions := &fakeSessions{chatResp: &entity.ChatResponse{Response: "All done.", IsFinal: true}}
	h := handlers.NewChatHandler(sender, sessions, zap.NewNop())

	require.NoError(t, h.Handle(context.Background(), &handlers.Message{ChatID: 7, Text: "ok"}))
	assert.Equal(t, []string{"All done.", render.MsgSpecReady}, sender.texts)
}

func TestLongReplyIsSplit(t *testing.T) {
	sender := &fakeSender{}
	sessions := &fakeSessions{chatResp: &entity.ChatResponse{Response: strings.Repeat("x", render.MaxMessageLength+10)}}
	h := handlers.NewChatHandler(sender, sessions, zap.NewNop())

	require.NoError(t, h.Handle(context.Background(), &handlers.Message{ChatID: 7, Text: "go"}))
	assert.Len(t, sender.texts, 2)
}

func TestChatErrorIsReturned(t *testing.T) {
	sender := &fakeSender{}
	sessions := &fakeSessions{chatErr: errors.New("oracle down")}
	h := handlers.NewChatHandler(sender, sessions, zap.NewNop())

	err := h.Handle(context.Background(), &handlers.Message{ChatID: 7, Text: "go"})
	assert.Error(t, err)
	assert.Empty(t, sender.texts)
}

func TestBlankTextIsNotRelayed(t *testing.T) {
	sender := &fakeSender{}
	sessions := &fakeSessions{}
	h := handlers.NewChatHandler(sender, sessions, zap.NewNop())

	require.NoError(t, h.Handle(context.Background(), &handlers.Message{ChatID: 7}))
	assert.Nil(t, sessions.chatReq)
	assert.Equal(t, []string{render.MsgTextOnly}, sender.texts)
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		resetErr error
		want     string
		resets   int
	}{
		{"start resets and greets", "start", nil, render.MsgWelcome, 1},
		{"start without conversation", "start", entity.ErrConversationNotFound, render.MsgWelcome, 1},
		{"reset", "reset", nil, render.MsgReset, 1},
		{"reset without conversation", "reset", entity.ErrConversationNotFound, render.MsgNothingToReset, 1},
		{"help", "help", nil, render.MsgHelp, 0},
		{"unknown", "frobnicate", nil, render.MsgUnknownCommand, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			sessions := &fakeSessions{resetErr: tt.resetErr}
			h := handlers.NewChatHandler(sender, sessions, zap.NewNop())

			require.NoError(t, h.Handle(context.Background(), &handlers.Message{ChatID: 3, Command: tt.command}))
			assert.Equal(t, []string{tt.want}, sender.texts)
			assert.Len(t, sessions.resetIDs, tt.resets)
		})
	}
}

func TestSpecCommand(t *testing.T) {
	spec := &entity.FinalSpec{
		Platform:      entity.PlatformTopcoder,
		ChallengeType: entity.ChallengeTypeDesign,
		Fields:        map[string]any{"title": "Logo"},
	}

	t.Run("sends markdown by default", func(t *testing.T) {
		sender := &fakeSender{}
		h := handlers.NewChatHandler(sender, &fakeSessions{spec: spec}, zap.NewNop())

		require.NoError(t, h.Handle(context.Background(), &handlers.Message{ChatID: 3, Command: "spec"}))
		require.Len(t, sender.documents, 1)
		assert.Empty(t, sender.texts)
	})

	t.Run("not ready", func(t *testing.T) {
		sender := &fakeSender{}
		h := handlers.NewChatHandler(sender, &fakeSessions{specErr: entity.ErrNoResult}, zap.NewNop())

		require.NoError(t, h.Handle(context.Background(), &handlers.Message{ChatID: 3, Command: "spec"}))
		assert.Equal(t, []string{render.MsgSpecNotReady}, sender.texts)
		assert.Empty(t, sender.documents)
	})

	t.Run("unsupported format", func(t *testing.T) {
		sender := &fakeSender{}
		h := handlers.NewChatHandler(sender, &fakeSessions{spec: spec}, zap.NewNop())

		require.NoError(t, h.Handle(context.Background(), &handlers.Message{ChatID: 3, Command: "spec", CommandArgs: "rtf"}))
		assert.Len(t, sender.texts, 1)
		assert.Empty(t, sender.documents)
	})
}
