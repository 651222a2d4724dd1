package rag

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/spec-copilot/internal/entity"
)

// MockConnector ranks a fixed set of sample challenges by keyword overlap with the query.
type MockConnector struct {
	logger  *zap.Logger
	samples []entity.SimilarSpec
	tokens  []map[string]struct{}
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return NewMockConnectorWithSamples(logger, sampleSpecs())
}

func NewMockConnectorWithSamples(logger *zap.Logger, samples []entity.SimilarSpec) *MockConnector {
	m := &MockConnector{
		logger:  logger,
		samples: samples,
		tokens:  make([]map[string]struct{}, len(samples)),
	}
	for i, s := range samples {
		m.tokens[i] = tokenize(s.SearchText())
	}
	return m
}

func (m *MockConnector) Search(ctx context.Context, query string, limit int) []entity.SimilarSpec {
	if limit <= 0 {
		return []entity.SimilarSpec{}
	}

	q := tokenize(query)

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, 0, len(m.samples))
	for i := range m.samples {
		ranked = append(ranked, scored{idx: i, score: overlap(q, m.tokens[i])})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	results := make([]entity.SimilarSpec, 0, min(limit, len(ranked)))
	for _, r := range ranked[:min(limit, len(ranked))] {
		spec := m.samples[r.idx]
		spec.SimilarityScore = r.score
		results = append(results, spec)
	}

	ctxzap.Info(ctx, "[MOCK] similar spec search",
		zap.Int("limit", limit),
		zap.Int("count", len(results)),
	)
	return results
}

func tokenize(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(w) > 2 {
			out[w] = struct{}{}
		}
	}
	return out
}

// overlap is the share of query tokens found in the document.
func overlap(query, doc map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	hits := 0
	for w := range query {
		if _, ok := doc[w]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(query))
}

func sampleSpecs() []entity.SimilarSpec {
	return []entity.SimilarSpec{
		{
			Title:         "Mobile App UI Design for Food Delivery",
			Overview:      "Design a modern, user-friendly interface for a food delivery mobile application",
			Platform:      string(entity.PlatformTopcoder),
			ChallengeType: string(entity.ChallengeTypeDesign),
			TechStack:     []string{"Figma", "Sketch"},
			Timeline:      map[string]any{"submission_days": 7},
			Objectives:    []string{"Create wireframes", "Design UI screens", "Provide style guide"},
		},
		{
			Title:         "E-commerce Product Recommendation API",
			Overview:      "Develop a machine learning API that provides personalized product recommendations",
			Platform:      string(entity.PlatformTopcoder),
			ChallengeType: string(entity.ChallengeTypeDevelopment),
			TechStack:     []string{"Python", "FastAPI", "TensorFlow", "PostgreSQL"},
			Timeline:      map[string]any{"submission_days": 14},
			Objectives:    []string{"Build recommendation algorithm", "Create REST API", "Implement caching"},
		},
		{
			Title:         "Customer Churn Prediction Model",
			Overview:      "Build a machine learning model to predict customer churn for a subscription service",
			Platform:      string(entity.PlatformKaggle),
			ChallengeType: string(entity.ChallengeTypeDataScience),
			TechStack:     []string{"Python", "Pandas", "Scikit-learn", "XGBoost"},
			Timeline:      map[string]any{"submission_days": 21},
			Objectives:    []string{"Data analysis", "Feature engineering", "Model training", "Performance optimization"},
		},
		{
			Title:         "React Dashboard Component Library",
			Overview:      "Create a reusable component library for admin dashboards",
			Platform:      string(entity.PlatformTopcoder),
			ChallengeType: string(entity.ChallengeTypeDevelopment),
			TechStack:     []string{"React", "TypeScript", "Storybook", "CSS-in-JS"},
			Timeline:      map[string]any{"submission_days": 10},
			Objectives:    []string{"Build components", "Create documentation", "Implement tests"},
		},
	}
}
