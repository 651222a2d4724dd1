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
	defaultAnswerConfidence  = 0.8
	fallbackAnswerConfidence = 0.6
	fallbackAnswerReasoning  = "Direct user input"
)

// FieldCollector loads the field schema and walks the user through its fields.
type FieldCollector struct {
	oracle      TextOracle
	suggestions SuggestionService
	catalog     SchemaCatalog
	recorder    Recorder
}

func NewFieldCollector(oracle TextOracle, suggestions SuggestionService, catalog SchemaCatalog, recorder Recorder) *FieldCollector {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &FieldCollector{
		oracle:      oracle,
		suggestions: suggestions,
		catalog:     catalog,
		recorder:    recorder,
	}
}

// NextField returns the first required field not yet completed, then the first
// remaining optional one, both in declared order. Empty means every field is done.
func NextField(schema *entity.FieldSchema, completed []string) string {
	done := make(map[string]struct{}, len(completed))
	for _, f := range completed {
		done[f] = struct{}{}
	}

	for _, f := range schema.Fields {
		if _, ok := done[f.Key]; f.Required && !ok {
			return f.Key
		}
	}
	for _, f := range schema.Fields {
		if _, ok := done[f.Key]; !ok {
			return f.Key
		}
	}
	return ""
}

// LoadSchema resolves the schema for the selected pair. Missing selection or an
// unknown pair sends the conversation back to SCOPING.
func (c *FieldCollector) LoadSchema(ctx context.Context, state entity.ConversationState, input string) (entity.ConversationState, string, error) {
	log := ctxzap.Extract(ctx)

	if state.Platform == "" || state.ChallengeType == "" {
		log.Info("Platform or challenge type missing, returning to scoping")
		state.Phase = entity.PhaseScoping
		appendExchange(&state, input, replyNeedSelection)
		return state, replyNeedSelection, nil
	}

	schema, ok := c.catalog.Get(state.Platform, state.ChallengeType)
	if !ok {
		log.Info("No schema for selection, returning to scoping",
			zap.Error(fmt.Errorf("%w: %s %s", entity.ErrUnknownSchema, state.Platform, state.ChallengeType)),
		)
		reply := fmt.Sprintf(replyNoTemplateFormat, state.Platform, state.ChallengeType)
		state.Platform = ""
		state.ChallengeType = ""
		state.Phase = entity.PhaseScoping
		appendExchange(&state, input, reply)
		return state, reply, nil
	}

	state.Schema = schema
	state.RequiredFields = c.catalog.RequiredFields(schema)
	state.CompletedFields = []string{}
	state.CurrentField = NextField(schema, state.CompletedFields)
	state.Phase = entity.PhaseFieldQuestions

	reply := schemaIntro(schema, len(state.RequiredFields))
	if def, ok := c.catalog.FieldDefinition(schema, state.CurrentField); ok {
		reply += "\n\n" + fieldIntro(state.CurrentField, def)
	}

	log.Info("Schema loaded",
		zap.Int("fields", len(schema.Fields)),
		zap.Int("required", len(state.RequiredFields)),
	)

	appendExchange(&state, input, reply)
	return state, reply, nil
}

// Advance handles one turn of field collection. Questions and empty input get
// a question about the current field; anything else is recorded as its answer.
func (c *FieldCollector) Advance(ctx context.Context, state entity.ConversationState, input string) (entity.ConversationState, string, error) {
	if state.Schema == nil {
		return state, "", fmt.Errorf("%w: phase %s without a schema snapshot", entity.ErrStateInconsistency, state.Phase)
	}

	if state.CurrentField == "" {
		state.Phase = entity.PhaseSpecGeneration
		appendExchange(&state, input, replyCompiling)
		return state, replyCompiling, nil
	}

	key := state.CurrentField

	if state.IsCompleted(key) {
		return state, "", fmt.Errorf("%w: current field %q is already completed", entity.ErrStateInconsistency, key)
	}

	def, ok := c.catalog.FieldDefinition(state.Schema, key)
	if !ok {
		return c.skipField(ctx, state, input)
	}

	if strings.TrimSpace(input) == "" || IsQuestion(input) {
		return c.askField(ctx, state, key, def, input)
	}

	return c.recordAnswer(ctx, state, key, def, input)
}

func (c *FieldCollector) skipField(ctx context.Context, state entity.ConversationState, input string) (entity.ConversationState, string, error) {
	ctxzap.Extract(ctx).Warn("Current field is not in the schema, skipping", zap.String("field", state.CurrentField))

	state.CurrentField = NextField(state.Schema, state.CompletedFields)

	reply := replySkipDone
	if state.CurrentField != "" {
		reply = fmt.Sprintf(replySkipFormat, state.CurrentField)
	} else {
		state.Phase = entity.PhaseSpecGeneration
	}

	appendExchange(&state, input, reply)
	return state, reply, nil
}

func (c *FieldCollector) askField(
	ctx context.Context,
	state entity.ConversationState,
	key string,
	def entity.FieldDefinition,
	input string,
) (entity.ConversationState, string, error) {
	scope := state.ConfirmedScope()

	similar := c.suggestions.Search(ctx, strings.TrimSpace(scope+" "+key), similarSpecsLimit)

	prompt := buildFieldQuestionPrompt(fieldPromptData{
		key:           key,
		def:           def,
		platform:      state.Platform,
		challengeType: state.ChallengeType,
		scope:         scope,
		examples:      exampleValues(similar, key),
		suggestions:   c.fieldSuggestions(ctx, state, key),
	})

	userQuestion := ""
	if IsQuestion(input) {
		userQuestion = strings.TrimSpace(input)
	}

	reply, err := c.oracle.Complete(ctx, []entity.Message{
		{Role: entity.RoleSystem, Content: prompt},
		{Role: entity.RoleUser, Content: buildFieldQuestionInput(key, userQuestion)},
	})
	reply = strings.TrimSpace(reply)
	if err != nil || reply == "" {
		ctxzap.Extract(ctx).Warn("Field question oracle call failed, using fallback question",
			zap.String("field", key),
			zap.Error(oracleErr(err)),
		)
		c.recorder.OracleFallback(ctx, "field_question")
		reply = fallbackQuestion(key, def)
	}

	appendExchange(&state, input, reply)
	return state, reply, nil
}

// exampleValues takes the first specs and keeps the values of those carrying key.
func exampleValues(similar []entity.SimilarSpec, key string) []any {
	var out []any
	for _, spec := range similar[:min(len(similar), fieldExamples)] {
		if v, ok := spec.FieldValue(key); ok {
			out = append(out, v)
		}
	}
	return out
}

func (c *FieldCollector) recordAnswer(
	ctx context.Context,
	state entity.ConversationState,
	key string,
	def entity.FieldDefinition,
	input string,
) (entity.ConversationState, string, error) {
	log := ctxzap.Extract(ctx)

	answer := c.extractAnswer(ctx, key, def, input)

	reasoning := answer.Reasoning
	if !c.catalog.Validate(state.Schema, key, answer.Value) {
		reasoning = fmt.Sprintf("%s (value is not a valid %s)", reasoning, def.FieldType)
	}

	state.UserResponses[key] = answer.Value
	state.CompletedFields = append(state.CompletedFields, key)

	l := ledger.New(state.ReasoningTraces)
	l.Append(entity.ReasoningTrace{
		Field:      key,
		Source:     "user_input: " + input,
		Confidence: answer.Confidence,
		Reasoning:  reasoning,
		Value:      answer.Value,
	})
	state.ReasoningTraces = l.Traces()

	state.CurrentField = NextField(state.Schema, state.CompletedFields)

	var reply string
	if state.CurrentField == "" {
		state.Phase = entity.PhaseSpecGeneration
		reply = replyAllCollected
	} else {
		reply = fmt.Sprintf(replyRecordedFormat, key)
		if next, ok := c.catalog.FieldDefinition(state.Schema, state.CurrentField); ok {
			reply += "\n\n" + fieldIntro(state.CurrentField, next)
		}
	}

	log.Info("Field recorded",
		zap.String("field", key),
		zap.Float64("confidence", *answer.Confidence),
		zap.String("next_field", state.CurrentField),
	)

	appendExchange(&state, input, reply)
	return state, reply, nil
}

// extractAnswer asks the oracle for a typed value. Any failure stores the raw
// input with a fixed confidence so the answer is never lost.
func (c *FieldCollector) extractAnswer(ctx context.Context, key string, def entity.FieldDefinition, input string) entity.ExtractedAnswer {
	log := ctxzap.Extract(ctx)

	fallback := entity.ExtractedAnswer{
		Value:      input,
		Confidence: confidence(fallbackAnswerConfidence),
		Reasoning:  fallbackAnswerReasoning,
	}

	reply, err := c.oracle.Complete(ctx, []entity.Message{
		{Role: entity.RoleSystem, Content: buildAnswerPrompt(key, def, input)},
		{Role: entity.RoleUser, Content: input},
	})
	if err != nil {
		log.Warn("Answer extraction oracle call failed, storing raw input",
			zap.String("field", key),
			zap.Error(oracleErr(err)),
		)
		c.recorder.OracleFallback(ctx, "answer_extraction")
		return fallback
	}

	answer, err := parseExtractedAnswer(reply)
	if err != nil {
		log.Warn("Answer extraction reply unparseable, storing raw input",
			zap.String("field", key),
			zap.Error(err),
		)
		c.recorder.OracleFallback(ctx, "answer_extraction")
		return fallback
	}

	if answer.Confidence == nil {
		answer.Confidence = confidence(defaultAnswerConfidence)
	} else {
		answer.Confidence = confidence(clampConfidence(*answer.Confidence))
	}
	if strings.TrimSpace(answer.Reasoning) == "" {
		answer.Reasoning = "User provided: " + input
	}

	return answer
}
