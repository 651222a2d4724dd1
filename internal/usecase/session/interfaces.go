package session

import (
	"context"
	"time"

	"github.com/futig/spec-copilot/internal/entity"
)

type TurnHandler interface {
	HandleTurn(ctx context.Context, state entity.ConversationState, input string) (entity.ConversationState, string, error)
}

type SchemaLister interface {
	Summaries() []entity.SchemaSummary
}

type CallbackConnector interface {
	SendFinalSpec(ctx context.Context, callbackURL string, threadID string, spec *entity.FinalSpec)
	SendError(ctx context.Context, callbackURL string, threadID string, message string, details map[string]any)
}

type TurnRecorder interface {
	RecordTurn(ctx context.Context, phase string, duration time.Duration)
	RecordTurnFailed(ctx context.Context, phase, errorType string, duration time.Duration)
	RecordSpecCompleted(ctx context.Context, platform, challengeType string)
}
