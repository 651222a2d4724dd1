package formatter_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/spec-copilot/internal/entity"
	"github.com/futig/spec-copilot/internal/pkg/formatter"
)

func sampleSpec() *entity.FinalSpec {
	c := 0.8
	return &entity.FinalSpec{
		ThreadID:      "thread-1",
		Platform:      entity.PlatformTopcoder,
		ChallengeType: entity.ChallengeTypeDesign,
		Scope:         "Food delivery app UI",
		FieldOrder:    []string{"title", "objectives", "timeline"},
		Fields: map[string]any{
			"title":      "Food Delivery UI",
			"objectives": []any{"Create wireframes", "Design UI screens"},
			"timeline":   map[string]any{"submission_days": 7.0},
		},
		ReasoningTrace: []entity.TraceSummary{
			{Field: "title", Source: "user_input: Food Delivery UI", Confidence: &c},
		},
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", formatter.FormatValue(nil))
	assert.Equal(t, "plain", formatter.FormatValue("plain"))
	assert.Equal(t, "14", formatter.FormatValue(14.0))
	assert.Equal(t, "2.5", formatter.FormatValue(2.5))
	assert.Equal(t, "Go, Postgres", formatter.FormatValue([]any{"Go", "Postgres"}))
	assert.Equal(t, "first: 500; second: 250", formatter.FormatValue(map[string]any{"second": 250.0, "first": 500.0}))
}

func TestValueLines(t *testing.T) {
	assert.Equal(t, []string{"- a", "- b"}, formatter.ValueLines([]string{"a", "b"}))
	assert.Equal(t, []string{"days: 7"}, formatter.ValueLines(map[string]any{"days": 7.0}))
	assert.Equal(t, []string{"text"}, formatter.ValueLines("text"))
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := formatter.NewMarkdownFormatter().Format(sampleSpec())
	require.NoError(t, err)

	md := string(out)
	assert.True(t, strings.HasPrefix(md, "# Challenge Specification: Topcoder Design\n"))
	assert.Contains(t, md, "- **Scope:** Food delivery app UI")
	assert.Contains(t, md, "## Objectives\n\n- Create wireframes\n- Design UI screens\n")
	assert.Contains(t, md, "## Timeline\n\nsubmission_days: 7\n")
	assert.Contains(t, md, "1. title: user_input: Food Delivery UI (confidence 0.80)")

	assert.Less(t, strings.Index(md, "## Title"), strings.Index(md, "## Objectives"))
}

func TestJSONFormatter(t *testing.T) {
	out, err := formatter.NewJSONFormatter().Format(sampleSpec())
	require.NoError(t, err)

	var decoded entity.FinalSpec
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "Food Delivery UI", decoded.Fields["title"])
	assert.Equal(t, []string{"title", "objectives", "timeline"}, decoded.FieldOrder)
}

func TestFactory(t *testing.T) {
	f := formatter.NewFactory()

	tests := []struct {
		format entity.ResultFormat
		ext    string
	}{
		{entity.FormatMarkdown, ".md"},
		{entity.FormatJSON, ".json"},
		{entity.FormatDOCX, ".docx"},
		{entity.FormatPDF, ".pdf"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			fm, err := f.Create(tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.ext, fm.FileExtension())
		})
	}

	_, err := f.Create("html")
	assert.ErrorIs(t, err, entity.ErrInvalidFormat)
}

func TestPDFFormatterProducesDocument(t *testing.T) {
	out, err := formatter.NewPDFFormatter().Format(sampleSpec())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}
