package validator

import (
	"fmt"
	"net/url"
	"regexp"
	"unicode/utf8"

	"github.com/futig/spec-copilot/internal/config"
	"github.com/futig/spec-copilot/internal/entity"
)

const maxThreadIDLength = 128

var threadIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.:-]+$`)

// Validator checks inbound requests before they reach the usecases
type Validator struct {
	cfg config.ConversationConfig
}

func NewValidator(cfg config.ConversationConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateChat validates a chat turn. An empty message is allowed: during
// field collection it asks the copilot to explain the current field.
func (v *Validator) ValidateChat(req *entity.ChatRequest) error {
	if v.cfg.MaxMessageLength > 0 && utf8.RuneCountInString(req.Message) > v.cfg.MaxMessageLength {
		return fmt.Errorf("%w: message is longer than %d characters", entity.ErrInvalidParameter, v.cfg.MaxMessageLength)
	}

	if req.ThreadID != "" {
		if err := v.ValidateThreadID(req.ThreadID); err != nil {
			return err
		}
	}

	if req.CallbackURL != "" {
		u, err := url.Parse(req.CallbackURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: callback_url must be an absolute http(s) URL", entity.ErrInvalidParameter)
		}
	}

	return nil
}

func (v *Validator) ValidateThreadID(threadID string) error {
	if threadID == "" {
		return fmt.Errorf("%w: thread_id", entity.ErrMissingField)
	}
	if len(threadID) > maxThreadIDLength || !threadIDPattern.MatchString(threadID) {
		return fmt.Errorf("%w: thread_id must be at most %d characters of letters, digits, '_', '.', ':' or '-'", entity.ErrInvalidParameter, maxThreadIDLength)
	}
	return nil
}
