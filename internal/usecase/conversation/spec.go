package conversation

import (
	"fmt"
	"strings"

	"github.com/futig/spec-copilot/internal/entity"
	"github.com/futig/spec-copilot/internal/ledger"
	"github.com/futig/spec-copilot/internal/pkg/formatter"
)

// BuildFinalSpec assembles the specification from the recorded answers.
// Its fields are exactly the completed fields, in completion order.
func BuildFinalSpec(state entity.ConversationState) entity.FinalSpec {
	fields := make(map[string]any, len(state.CompletedFields))
	for _, key := range state.CompletedFields {
		fields[key] = state.UserResponses[key]
	}

	return entity.FinalSpec{
		ThreadID:       state.ThreadID,
		Platform:       state.Platform,
		ChallengeType:  state.ChallengeType,
		Scope:          state.ConfirmedScope(),
		ProjectStage:   state.ProjectStage,
		FieldOrder:     append([]string{}, state.CompletedFields...),
		Fields:         fields,
		ReasoningTrace: ledger.New(state.ReasoningTraces).Summary(),
	}
}

// RenderSpec produces the chat reply presenting a final specification.
// Displayed values come from the ledger when a field answer carries one.
func RenderSpec(spec *entity.FinalSpec, traces []entity.ReasoningTrace) string {
	l := ledger.New(traces)

	var b strings.Builder
	if spec.Platform != "" {
		fmt.Fprintf(&b, "Here is your %s %s challenge specification:\n", spec.Platform, spec.ChallengeType)
	} else {
		b.WriteString("Here is your challenge specification:\n")
	}

	for _, key := range spec.FieldOrder {
		value, ok := l.LatestValue(key)
		if !ok {
			value = spec.Fields[key]
		}

		fmt.Fprintf(&b, "\n**%s**: %s", key, formatter.FormatValue(value))
		if t, ok := l.Latest(key); ok && t.Confidence != nil {
			fmt.Fprintf(&b, " (confidence %.2f)", *t.Confidence)
		}
	}

	return b.String()
}
