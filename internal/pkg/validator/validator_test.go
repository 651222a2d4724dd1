package validator_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/futig/spec-copilot/internal/config"
	"github.com/futig/spec-copilot/internal/entity"
	"github.com/futig/spec-copilot/internal/pkg/validator"
)

func TestValidateChat(t *testing.T) {
	v := validator.NewValidator(config.ConversationConfig{MaxMessageLength: 10})

	tests := []struct {
		name    string
		req     entity.ChatRequest
		wantErr error
	}{
		{"empty message", entity.ChatRequest{}, nil},
		{"plain", entity.ChatRequest{Message: "hi", ThreadID: "tg-42"}, nil},
		{"too long", entity.ChatRequest{Message: strings.Repeat("a", 11)}, entity.ErrInvalidParameter},
		{"bad thread", entity.ChatRequest{ThreadID: "a b"}, entity.ErrInvalidParameter},
		{"long thread", entity.ChatRequest{ThreadID: strings.Repeat("a", 129)}, entity.ErrInvalidParameter},
		{"callback ok", entity.ChatRequest{CallbackURL: "https://example.com/hook"}, nil},
		{"callback relative", entity.ChatRequest{CallbackURL: "/hook"}, entity.ErrInvalidParameter},
		{"callback scheme", entity.ChatRequest{CallbackURL: "ftp://example.com"}, entity.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateChat(&tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateThreadIDMissing(t *testing.T) {
	v := validator.NewValidator(config.ConversationConfig{})
	assert.ErrorIs(t, v.ValidateThreadID(""), entity.ErrMissingField)
}
