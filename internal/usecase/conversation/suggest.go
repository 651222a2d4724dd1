package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/futig/spec-copilot/internal/entity"
)

const (
	techStackSuggestions = 5
	timelineSearchLimit  = 5
	defaultTimelineDays  = 7
	submissionDaysKey    = "submission_days"
)

var timelineDefaults = map[entity.ChallengeType]int{
	entity.ChallengeTypeDesign:       7,
	entity.ChallengeTypeDevelopment:  14,
	entity.ChallengeTypeDataScience:  21,
	entity.ChallengeTypeFirst2Finish: 3,
	entity.ChallengeTypeBugHunt:      5,
}

// SuggestTechStack returns up to five technologies most used by similar
// specifications, most frequent first. Ties keep first-seen order.
func SuggestTechStack(ctx context.Context, svc SuggestionService, description string, challengeType entity.ChallengeType) []string {
	similar := svc.Search(ctx, fmt.Sprintf("%s %s", description, challengeType), similarSpecsLimit)

	counts := map[string]int{}
	var order []string
	for _, spec := range similar {
		for _, tech := range spec.TechStack {
			if _, seen := counts[tech]; !seen {
				order = append(order, tech)
			}
			counts[tech]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	return order[:min(len(order), techStackSuggestions)]
}

// SuggestTimeline averages submission days over similar specifications,
// falling back to a per challenge type default.
func SuggestTimeline(ctx context.Context, svc SuggestionService, challengeType entity.ChallengeType) map[string]any {
	similar := svc.Search(ctx, fmt.Sprintf("%s medium", challengeType), timelineSearchLimit)

	total, n := 0, 0
	for _, spec := range similar {
		if len(spec.Timeline) == 0 {
			continue
		}
		days, ok := toInt(spec.Timeline[submissionDaysKey])
		if !ok {
			days = defaultTimelineDays
		}
		total += days
		n++
	}

	if n > 0 {
		return map[string]any{submissionDaysKey: total / n}
	}

	if days, ok := timelineDefaults[challengeType]; ok {
		return map[string]any{submissionDaysKey: days}
	}
	return map[string]any{submissionDaysKey: defaultTimelineDays}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	default:
		return 0, false
	}
}

// fieldSuggestions derives hints for fields the suggestion service knows about.
func (c *FieldCollector) fieldSuggestions(ctx context.Context, state entity.ConversationState, key string) []string {
	switch key {
	case "tech_stack":
		stack := SuggestTechStack(ctx, c.suggestions, state.ConfirmedScope(), state.ChallengeType)
		if len(stack) == 0 {
			return nil
		}
		return []string{"Commonly used technologies: " + strings.Join(stack, ", ")}
	case "timeline":
		timeline := SuggestTimeline(ctx, c.suggestions, state.ChallengeType)
		return []string{fmt.Sprintf("Typical submission window: %v days", timeline[submissionDaysKey])}
	default:
		return nil
	}
}
