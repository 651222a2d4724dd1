package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/spec-copilot/internal/entity"
	"github.com/futig/spec-copilot/internal/ledger"
)

const (
	scopeConfidence            = 0.9
	defaultSelectionConfidence = 0.7
)

// ScopeNegotiator narrows the user's goal into a confirmed scope and then
// picks the platform and challenge type for it.
type ScopeNegotiator struct {
	oracle      TextOracle
	suggestions SuggestionService
	recorder    Recorder
}

func NewScopeNegotiator(oracle TextOracle, suggestions SuggestionService, recorder Recorder) *ScopeNegotiator {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &ScopeNegotiator{
		oracle:      oracle,
		suggestions: suggestions,
		recorder:    recorder,
	}
}

// Negotiate runs one turn of the scoping dialogue. Once the scope is confirmed
// it hands the turn to SelectSchema.
func (n *ScopeNegotiator) Negotiate(ctx context.Context, state entity.ConversationState, input string) (entity.ConversationState, string, error) {
	if state.ScopeConfirmed {
		return n.SelectSchema(ctx, state, input)
	}

	log := ctxzap.Extract(ctx)

	similar := n.suggestions.Search(ctx, input, similarSpecsLimit)

	messages := make([]entity.Message, 0, len(state.Messages)+2)
	messages = append(messages, entity.Message{Role: entity.RoleSystem, Content: buildScopingPrompt(similar)})
	messages = append(messages, state.Messages...)
	if input != "" {
		messages = append(messages, entity.Message{Role: entity.RoleUser, Content: input})
	}

	reply, err := n.oracle.Complete(ctx, messages)
	if err != nil || strings.TrimSpace(reply) == "" {
		log.Warn("Scoping oracle call failed, holding phase", zap.Error(oracleErr(err)))
		n.recorder.OracleFallback(ctx, "scoping")
		return state, orDefault(strings.TrimSpace(reply), replyRephrase), nil
	}

	if stage, ok := detectStage(reply); ok {
		state.ProjectStage = stage
	}

	if scope, ok := parseScopeConfirmation(reply); ok {
		state.ScopeConfirmed = true
		state.UserResponses[entity.ConfirmedScopeKey] = scope

		l := ledger.New(state.ReasoningTraces)
		l.Append(entity.ReasoningTrace{
			Field:      "scoping",
			Source:     "scoping_dialogue",
			Confidence: confidence(scopeConfidence),
			Reasoning:  fmt.Sprintf("User confirmed scope: %s", scope),
		})
		state.ReasoningTraces = l.Traces()
		state.Phase = entity.PhaseSchemaSelection

		log.Info("Scope confirmed", zap.String("scope", scope))
	}

	appendExchange(&state, input, reply)

	return state, reply, nil
}

// SelectSchema asks the oracle for a platform and challenge type recommendation.
// An unparseable or invalid recommendation keeps the phase and surfaces the reply unchanged.
func (n *ScopeNegotiator) SelectSchema(ctx context.Context, state entity.ConversationState, input string) (entity.ConversationState, string, error) {
	log := ctxzap.Extract(ctx)

	scope := state.ConfirmedScope()
	if scope == "" {
		scope = input
	}

	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: selectionPrompt},
		{Role: entity.RoleUser, Content: buildSelectionInput(scope, input)},
	}

	reply, err := n.oracle.Complete(ctx, messages)
	if err != nil || strings.TrimSpace(reply) == "" {
		log.Warn("Schema selection oracle call failed, holding phase", zap.Error(oracleErr(err)))
		n.recorder.OracleFallback(ctx, "schema_selection")
		return state, orDefault(strings.TrimSpace(reply), replyRephrase), nil
	}

	appendExchange(&state, input, reply)

	rec, err := parseRecommendation(reply)
	if err != nil {
		log.Info("No usable recommendation in reply", zap.Error(err))
		state.Phase = entity.PhaseSchemaSelection
		return state, reply, nil
	}

	reasoning := rec.reasoning
	if reasoning == "" {
		reasoning = fmt.Sprintf("Recommended %s - %s", rec.platform, rec.challengeType)
	}

	l := ledger.New(state.ReasoningTraces)
	l.Append(entity.ReasoningTrace{
		Field:      "schema_selection",
		Source:     "schema_recommendation",
		Confidence: confidence(rec.confidence),
		Reasoning:  reasoning,
	})
	state.ReasoningTraces = l.Traces()

	state.Platform = rec.platform
	state.ChallengeType = rec.challengeType
	state.Phase = entity.PhaseSchemaLoading

	log.Info("Schema selected",
		zap.String("platform", string(rec.platform)),
		zap.String("challenge_type", string(rec.challengeType)),
	)

	return state, reply, nil
}

func appendExchange(state *entity.ConversationState, input, reply string) {
	if input != "" {
		state.Messages = append(state.Messages, entity.Message{Role: entity.RoleUser, Content: input})
	}
	state.Messages = append(state.Messages, entity.Message{Role: entity.RoleAssistant, Content: reply})
}

func confidence(v float64) *float64 {
	return &v
}

func oracleErr(err error) error {
	if err == nil {
		return fmt.Errorf("%w: empty reply", entity.ErrOracleMalformed)
	}
	return fmt.Errorf("%w: %w", entity.ErrOracleUnavailable, err)
}
