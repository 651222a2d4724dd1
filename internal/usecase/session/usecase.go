package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/futig/spec-copilot/internal/entity"
	"github.com/futig/spec-copilot/internal/pkg/logger"
	"github.com/futig/spec-copilot/internal/repository"
)

const defaultTurnTimeout = 60 * time.Second

var tracer = otel.Tracer("session-usecase")

// SessionUsecase is the boundary between transports and the conversation core.
// It loads state per thread, runs one turn at a time per thread and persists
// the result only when the turn completes.
type SessionUsecase struct {
	repo        repository.ConversationRepository
	turns       TurnHandler
	schemas     SchemaLister
	callback    CallbackConnector
	metrics     TurnRecorder
	locks       *threadLocks
	turnTimeout time.Duration
	tracer      trace.Tracer
	logger      *zap.Logger
}

// NewUsecase creates a new session use case. callback may be nil.
func NewUsecase(
	repo repository.ConversationRepository,
	turns TurnHandler,
	schemas SchemaLister,
	callback CallbackConnector,
	metrics TurnRecorder,
	turnTimeout time.Duration,
	logger *zap.Logger,
) *SessionUsecase {
	if turnTimeout <= 0 {
		turnTimeout = defaultTurnTimeout
	}

	return &SessionUsecase{
		repo:        repo,
		turns:       turns,
		schemas:     schemas,
		callback:    callback,
		metrics:     metrics,
		locks:       newThreadLocks(),
		turnTimeout: turnTimeout,
		tracer:      tracer,
		logger:      logger,
	}
}

// Chat runs one user turn. An empty thread id starts a new conversation.
func (uc *SessionUsecase) Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error) {
	threadID := req.ThreadID
	if threadID == "" {
		threadID = uuid.New().String()
	}

	ctx = logger.WithThread(logger.WithAction(ctx, "chat"), threadID)
	ctx, span := uc.tracer.Start(ctx, "session.chat")
	defer span.End()
	span.SetAttributes(attribute.String("thread.id", threadID))

	unlock, err := uc.locks.lock(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("wait for thread: %w", err)
	}
	defer unlock()

	state, err := uc.loadState(ctx, threadID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load state failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("conversation.phase", string(state.Phase)))

	start := time.Now()
	turnCtx, cancel := context.WithTimeout(ctx, uc.turnTimeout)
	next, reply, err := uc.turns.HandleTurn(turnCtx, *state, req.Message)
	cancel()

	if err != nil {
		uc.metrics.RecordTurnFailed(ctx, string(state.Phase), "state_inconsistency", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "turn failed")
		uc.notifyError(ctx, req.CallbackURL, threadID, state.Phase)
		return nil, fmt.Errorf("handle turn: %w", err)
	}

	// The caller went away mid-turn; nothing is committed.
	if ctxErr := ctx.Err(); ctxErr != nil {
		uc.metrics.RecordTurnFailed(ctx, string(state.Phase), "cancelled", time.Since(start))
		ctxzap.Warn(ctx, "Turn cancelled, discarding new state", zap.Error(ctxErr))
		return nil, fmt.Errorf("turn cancelled: %w", ctxErr)
	}

	if err := uc.repo.Save(ctx, &next); err != nil {
		uc.metrics.RecordTurnFailed(ctx, string(state.Phase), "save_failed", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return nil, fmt.Errorf("save conversation: %w", err)
	}

	uc.metrics.RecordTurn(ctx, string(state.Phase), time.Since(start))

	if next.IsFinal && !state.IsFinal {
		uc.metrics.RecordSpecCompleted(ctx, string(next.Platform), string(next.ChallengeType))
		ctxzap.Info(ctx, "Specification completed",
			zap.String("platform", string(next.Platform)),
			zap.String("challenge_type", string(next.ChallengeType)),
			zap.Int("fields", len(next.CompletedFields)),
		)

		if req.CallbackURL != "" && uc.callback != nil {
			uc.callback.SendFinalSpec(ctx, req.CallbackURL, threadID, next.FinalSpec)
		}
	}

	return toChatResponse(&next, reply), nil
}

// GetConversation returns the stored state of a thread
func (uc *SessionUsecase) GetConversation(ctx context.Context, threadID string) (*entity.ConversationDTO, error) {
	state, err := uc.repo.Get(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	return toConversationDTO(state), nil
}

// GetFinalSpec returns the final specification of a finished thread
func (uc *SessionUsecase) GetFinalSpec(ctx context.Context, threadID string) (*entity.FinalSpec, error) {
	state, err := uc.repo.Get(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	if !state.IsFinal || state.FinalSpec == nil {
		return nil, fmt.Errorf("%w: conversation %s is in phase %s", entity.ErrNoResult, threadID, state.Phase)
	}

	return state.FinalSpec, nil
}

// ResetConversation deletes a thread; the next turn on it starts from scratch.
// It waits for an in-flight turn on the same thread.
func (uc *SessionUsecase) ResetConversation(ctx context.Context, threadID string) error {
	ctx = logger.WithThread(logger.WithAction(ctx, "reset"), threadID)

	unlock, err := uc.locks.lock(ctx, threadID)
	if err != nil {
		return fmt.Errorf("wait for thread: %w", err)
	}
	defer unlock()

	if err := uc.repo.Delete(ctx, threadID); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}

	ctxzap.Info(ctx, "Conversation reset")
	return nil
}

func (uc *SessionUsecase) ListSchemas(_ context.Context) []entity.SchemaSummary {
	return uc.schemas.Summaries()
}

func (uc *SessionUsecase) loadState(ctx context.Context, threadID string) (*entity.ConversationState, error) {
	state, err := uc.repo.Get(ctx, threadID)
	if errors.Is(err, entity.ErrConversationNotFound) {
		ctxzap.Info(ctx, "Starting new conversation")
		fresh := entity.NewConversationState(threadID)
		return &fresh, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	return state, nil
}

// notifyError reports a failed turn without exposing internals
func (uc *SessionUsecase) notifyError(ctx context.Context, callbackURL, threadID string, phase entity.Phase) {
	if callbackURL == "" || uc.callback == nil {
		return
	}

	uc.callback.SendError(ctx, callbackURL, threadID, "internal error", map[string]any{
		"thread_id": threadID,
		"phase":     string(phase),
	})
}
