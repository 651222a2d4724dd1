// Package conversation implements the phase-driven dialogue that turns free-text
// user input into a structured challenge specification.
package conversation

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/spec-copilot/internal/entity"
	"github.com/futig/spec-copilot/internal/pkg/logger"
)

type OrchestratorOpts func(*orchestratorConfig)

type orchestratorConfig struct {
	recorder Recorder
}

func WithRecorder(r Recorder) OrchestratorOpts {
	return func(c *orchestratorConfig) {
		c.recorder = r
	}
}

// Orchestrator dispatches a turn to the component owning the current phase.
// It holds no per-conversation state and is safe for concurrent use.
type Orchestrator struct {
	scope  *ScopeNegotiator
	fields *FieldCollector
}

func NewOrchestrator(oracle TextOracle, suggestions SuggestionService, catalog SchemaCatalog, opts ...OrchestratorOpts) *Orchestrator {
	cfg := orchestratorConfig{recorder: nopRecorder{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Orchestrator{
		scope:  NewScopeNegotiator(oracle, suggestions, cfg.recorder),
		fields: NewFieldCollector(oracle, suggestions, catalog, cfg.recorder),
	}
}

// HandleTurn processes one user turn against a copy of state and returns the new
// state with the reply. The only error returned is a wrapped ErrStateInconsistency;
// the caller must then discard the returned state.
func (o *Orchestrator) HandleTurn(ctx context.Context, state entity.ConversationState, input string) (entity.ConversationState, string, error) {
	ctx = logger.AddFields(ctx,
		zap.String("thread_id", state.ThreadID),
		zap.String("phase", string(state.Phase)),
	)

	next, reply, err := o.dispatch(ctx, state.Clone(), input)
	if err != nil {
		ctxzap.Extract(ctx).Error("Conversation state is inconsistent", zap.Error(err))
		return state, "", err
	}

	if next.Phase != state.Phase {
		ctxzap.Extract(ctx).Info("Phase changed", zap.String("next_phase", string(next.Phase)))
	}

	return next, reply, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, state entity.ConversationState, input string) (entity.ConversationState, string, error) {
	switch state.Phase {
	case entity.PhaseScoping:
		return o.scope.Negotiate(ctx, state, input)
	case entity.PhaseSchemaSelection:
		return o.scope.SelectSchema(ctx, state, input)
	case entity.PhaseSchemaLoading:
		return o.fields.LoadSchema(ctx, state, input)
	case entity.PhaseFieldQuestions:
		return o.fields.Advance(ctx, state, input)
	case entity.PhaseSpecGeneration, entity.PhaseDone:
		return finalize(state)
	default:
		return state, "", fmt.Errorf("%w: unknown phase %q", entity.ErrStateInconsistency, state.Phase)
	}
}

// finalize builds the final specification. A DONE state with a spec is returned as is.
func finalize(state entity.ConversationState) (entity.ConversationState, string, error) {
	if state.Phase == entity.PhaseDone && state.FinalSpec != nil {
		return state, RenderSpec(state.FinalSpec, state.ReasoningTraces), nil
	}

	spec := BuildFinalSpec(state)
	state.FinalSpec = &spec
	state.IsFinal = true
	state.Phase = entity.PhaseDone

	return state, RenderSpec(&spec, state.ReasoningTraces), nil
}
