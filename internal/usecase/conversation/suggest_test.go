package conversation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/futig/spec-copilot/internal/entity"
	"github.com/futig/spec-copilot/internal/usecase/conversation"
)

func TestSuggestTechStack(t *testing.T) {
	svc := &staticSuggestions{specs: []entity.SimilarSpec{
		{TechStack: []string{"React", "Go"}},
		{TechStack: []string{"Go", "Postgres"}},
		{TechStack: []string{"Go", "React", "Redis", "Kafka", "gRPC"}},
	}}

	got := conversation.SuggestTechStack(context.Background(), svc, "task api", entity.ChallengeTypeDevelopment)

	assert.Equal(t, []string{"Go", "React", "Postgres", "Redis", "Kafka"}, got)
	assert.Equal(t, []string{"task api Development"}, svc.queries)
}

func TestSuggestTechStackEmpty(t *testing.T) {
	got := conversation.SuggestTechStack(context.Background(), &staticSuggestions{}, "x", entity.ChallengeTypeDesign)
	assert.Empty(t, got)
}

func TestSuggestTimeline(t *testing.T) {
	tests := []struct {
		name          string
		specs         []entity.SimilarSpec
		challengeType entity.ChallengeType
		want          int
	}{
		{
			name: "average of similar",
			specs: []entity.SimilarSpec{
				{Timeline: map[string]any{"submission_days": 10.0}},
				{Timeline: map[string]any{"submission_days": 15}},
				{},
			},
			challengeType: entity.ChallengeTypeDevelopment,
			want:          12,
		},
		{
			name:          "missing days count as a week",
			specs:         []entity.SimilarSpec{{Timeline: map[string]any{"review_days": 3}}},
			challengeType: entity.ChallengeTypeDesign,
			want:          7,
		},
		{"data science default", nil, entity.ChallengeTypeDataScience, 21},
		{"first2finish default", nil, entity.ChallengeTypeFirst2Finish, 3},
		{"bug hunt default", nil, entity.ChallengeTypeBugHunt, 5},
		{"unknown type default", nil, "", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := conversation.SuggestTimeline(context.Background(), &staticSuggestions{specs: tt.specs}, tt.challengeType)
			assert.Equal(t, map[string]any{"submission_days": tt.want}, got)
		})
	}
}
