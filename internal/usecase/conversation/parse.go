package conversation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/futig/spec-copilot/internal/entity"
)

var (
	scopeConfirmedPattern = regexp.MustCompile(`(?i)SCOPE_CONFIRMED:\s*(.+)`)
	recommendationPattern = regexp.MustCompile(`RECOMMENDATION:\s*(\w+)\s*-\s*(\w+)`)
	reasoningPattern      = regexp.MustCompile(`REASONING:\s*(.+)`)
	confidencePattern     = regexp.MustCompile(`CONFIDENCE:\s*([0-9]*\.?[0-9]+)`)
)

// Evaluated in order, first match wins.
var stagePatterns = []struct {
	stage   entity.ProjectStage
	pattern *regexp.Regexp
}{
	{entity.ProjectStageIdea, regexp.MustCompile(`\b(idea|concept|brainstorm)\b`)},
	{entity.ProjectStageDesign, regexp.MustCompile(`\b(design|mockup|wireframe|prototype)\b`)},
	{entity.ProjectStageDevelopment, regexp.MustCompile(`\b(develop|code|implement|build)\b`)},
	{entity.ProjectStageTesting, regexp.MustCompile(`\b(test|qa|debug)\b`)},
	{entity.ProjectStagePOC, regexp.MustCompile(`\b(poc|proof.of.concept|pilot)\b`)},
	{entity.ProjectStageExisting, regexp.MustCompile(`\b(existing|already|current)\b`)},
}

var questionIndicators = []string{"?", "what", "how", "when", "where", "why", "which", "can you", "could you"}

// IsQuestion reports whether text reads as a question rather than an answer.
// Indicators are matched as substrings of the lower-cased text.
func IsQuestion(text string) bool {
	lower := strings.ToLower(text)
	for _, indicator := range questionIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

func parseScopeConfirmation(reply string) (string, bool) {
	m := scopeConfirmedPattern.FindStringSubmatch(reply)
	if m == nil {
		return "", false
	}

	scope := strings.TrimSpace(m[1])
	if scope == "" {
		return "", false
	}
	return scope, true
}

func detectStage(reply string) (entity.ProjectStage, bool) {
	lower := strings.ToLower(reply)
	for _, sp := range stagePatterns {
		if sp.pattern.MatchString(lower) {
			return sp.stage, true
		}
	}
	return "", false
}

type recommendation struct {
	platform      entity.Platform
	challengeType entity.ChallengeType
	reasoning     string
	confidence    float64
}

func parseRecommendation(reply string) (recommendation, error) {
	m := recommendationPattern.FindStringSubmatch(reply)
	if m == nil {
		return recommendation{}, fmt.Errorf("%w: no recommendation line", entity.ErrOracleMalformed)
	}

	platform, err := entity.ParsePlatform(m[1])
	if err != nil {
		return recommendation{}, err
	}

	challengeType, err := entity.ParseChallengeType(m[2])
	if err != nil {
		return recommendation{}, err
	}

	rec := recommendation{
		platform:      platform,
		challengeType: challengeType,
		confidence:    defaultSelectionConfidence,
	}

	if r := reasoningPattern.FindStringSubmatch(reply); r != nil {
		rec.reasoning = strings.TrimSpace(r[1])
	}
	if c := confidencePattern.FindStringSubmatch(reply); c != nil {
		if v, err := strconv.ParseFloat(c[1], 64); err == nil {
			rec.confidence = clampConfidence(v)
		}
	}

	return rec, nil
}

// parseExtractedAnswer decodes the oracle's JSON record for a field answer.
// The whole reply must be one JSON object carrying a non-empty value.
func parseExtractedAnswer(reply string) (entity.ExtractedAnswer, error) {
	trimmed := strings.TrimSpace(reply)
	if !strings.HasPrefix(trimmed, "{") {
		return entity.ExtractedAnswer{}, fmt.Errorf("%w: answer record is not a JSON object", entity.ErrOracleMalformed)
	}

	var answer entity.ExtractedAnswer
	if err := json.Unmarshal([]byte(trimmed), &answer); err != nil {
		return entity.ExtractedAnswer{}, fmt.Errorf("%w: %w", entity.ErrOracleMalformed, err)
	}

	if isEmptyValue(answer.Value) {
		return entity.ExtractedAnswer{}, fmt.Errorf("%w: answer record has no value", entity.ErrOracleMalformed)
	}

	return answer, nil
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}

func clampConfidence(v float64) float64 {
	return min(max(v, 0), 1)
}
