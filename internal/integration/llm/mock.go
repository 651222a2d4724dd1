package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/spec-copilot/internal/entity"
)

var (
	mockFieldPattern = regexp.MustCompile(`'(\w+)' field`)
	mockTypePattern  = regexp.MustCompile(`- Type: (\w+)`)
	mockConfirmWords = []string{"yes", "confirm", "sounds good", "agreed", "correct", "ok", "let's go"}
)

// MockConnector answers every prompt kind the conversation core sends with
// deterministic, well-formed replies.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Complete(ctx context.Context, messages []entity.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("%w: empty prompt", entity.ErrOracleMalformed)
	}

	system := messages[0].Content
	last := messages[len(messages)-1].Content

	switch {
	case strings.Contains(system, "SCOPE_CONFIRMED"):
		ctxzap.Info(ctx, "[MOCK] scoping reply")
		return mockScoping(messages), nil
	case strings.Contains(system, "RECOMMENDATION:"):
		ctxzap.Info(ctx, "[MOCK] schema recommendation")
		return mockRecommendation(last), nil
	case strings.Contains(system, "You are asking about the"):
		ctxzap.Info(ctx, "[MOCK] field question")
		return mockQuestion(system), nil
	case strings.Contains(system, "You are processing the user's answer"):
		ctxzap.Info(ctx, "[MOCK] answer extraction")
		return mockExtraction(system, last)
	default:
		return "Could you tell me more about what you want to achieve?", nil
	}
}

func mockScoping(messages []entity.Message) string {
	var userTurns []string
	for _, msg := range messages[1:] {
		if msg.Role == entity.RoleUser {
			userTurns = append(userTurns, msg.Content)
		}
	}
	if len(userTurns) == 0 {
		return "Hi! Tell me about the project you want to turn into a challenge."
	}

	latest := userTurns[len(userTurns)-1]
	lower := strings.ToLower(latest)
	for _, w := range mockConfirmWords {
		if strings.Contains(lower, w) && len(userTurns) > 1 {
			return fmt.Sprintf("Great, the scope is settled.\nSCOPE_CONFIRMED: %s", userTurns[len(userTurns)-2])
		}
	}

	return fmt.Sprintf(
		"A focused first challenge could cover: %s. It should fit in a one to three week build with clear deliverables. Does this scope work for you?",
		strings.TrimSuffix(latest, "."),
	)
}

func mockRecommendation(input string) string {
	lower := strings.ToLower(input)
	challengeType := entity.ChallengeTypeDevelopment
	for _, w := range []string{"design", "ui", "ux", "mockup", "wireframe"} {
		if strings.Contains(lower, w) {
			challengeType = entity.ChallengeTypeDesign
			break
		}
	}

	return fmt.Sprintf(
		"RECOMMENDATION: %s - %s\nREASONING: The scope describes %s work with concrete deliverables.\nCONFIDENCE: 0.85",
		entity.PlatformTopcoder, challengeType, strings.ToLower(string(challengeType)),
	)
}

func mockQuestion(system string) string {
	field := "this field"
	if m := mockFieldPattern.FindStringSubmatch(system); m != nil {
		field = strings.ReplaceAll(m[1], "_", " ")
	}
	return fmt.Sprintf("Let's pin down the %s. What should it be for this challenge?", field)
}

func mockExtraction(system, answer string) (string, error) {
	fieldType := entity.FieldTypeText
	if m := mockTypePattern.FindStringSubmatch(system); m != nil {
		fieldType = entity.FieldType(m[1])
	}

	var value any
	switch fieldType {
	case entity.FieldTypeArray:
		items := []any{}
		for _, part := range strings.FieldsFunc(answer, func(r rune) bool { return r == ',' || r == '\n' || r == ';' }) {
			if p := strings.TrimSpace(part); p != "" {
				items = append(items, p)
			}
		}
		value = items
	case entity.FieldTypeObject:
		obj := map[string]any{}
		for _, part := range strings.Split(answer, ",") {
			k, v, ok := strings.Cut(part, ":")
			if ok && strings.TrimSpace(k) != "" {
				obj[strings.TrimSpace(k)] = strings.TrimSpace(v)
			}
		}
		if len(obj) == 0 {
			obj["details"] = strings.TrimSpace(answer)
		}
		value = obj
	case entity.FieldTypeNumber:
		if f, err := strconv.ParseFloat(strings.TrimSpace(answer), 64); err == nil {
			value = f
		} else {
			value = strings.TrimSpace(answer)
		}
	default:
		value = strings.TrimSpace(answer)
	}

	out, err := json.Marshal(entity.ExtractedAnswer{
		Value:      value,
		Confidence: ptr(0.85),
		Reasoning:  fmt.Sprintf("Parsed the answer as %s", fieldType),
	})
	if err != nil {
		return "", fmt.Errorf("marshal mock extraction: %w", err)
	}
	return string(out), nil
}

func ptr(v float64) *float64 {
	return &v
}
