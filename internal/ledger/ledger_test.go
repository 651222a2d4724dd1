package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/spec-copilot/internal/entity"
	"github.com/futig/spec-copilot/internal/ledger"
)

func conf(v float64) *float64 { return &v }

func TestNewCopiesSeed(t *testing.T) {
	seed := []entity.ReasoningTrace{{Field: "title", Source: "user_input: A", Value: "A"}}

	l := ledger.New(seed)
	l.Append(entity.ReasoningTrace{Field: "overview", Source: "user_input: B", Value: "B"})

	assert.Len(t, seed, 1)
	assert.Equal(t, 2, l.Len())
}

func TestTracesForKeepsAppendOrder(t *testing.T) {
	l := ledger.New(nil)
	l.Append(entity.ReasoningTrace{Field: "title", Reasoning: "first", Value: "A"})
	l.Append(entity.ReasoningTrace{Field: "overview", Reasoning: "other", Value: "B"})
	l.Append(entity.ReasoningTrace{Field: "title", Reasoning: "second", Value: "C"})

	traces := l.TracesFor("title")
	require.Len(t, traces, 2)
	assert.Equal(t, "first", traces[0].Reasoning)
	assert.Equal(t, "second", traces[1].Reasoning)

	assert.Empty(t, l.TracesFor("timeline"))
}

func TestLatestValueSkipsTracesWithoutValue(t *testing.T) {
	l := ledger.New(nil)
	l.Append(entity.ReasoningTrace{Field: "title", Source: "user_input: A", Value: "A", Confidence: conf(0.8)})
	l.Append(entity.ReasoningTrace{Field: "title", Source: "review", Reasoning: "note only"})

	v, ok := l.LatestValue("title")
	require.True(t, ok)
	assert.Equal(t, "A", v)

	latest, ok := l.Latest("title")
	require.True(t, ok)
	assert.Equal(t, "review", latest.Source)

	_, ok = l.LatestValue("scoping")
	assert.False(t, ok)
}

func TestSummary(t *testing.T) {
	l := ledger.New([]entity.ReasoningTrace{
		{Field: "scoping", Source: "scoping_dialogue", Confidence: conf(0.9)},
		{Field: "title", Source: "user_input: A", Confidence: conf(0.6), Value: "A"},
	})

	assert.Equal(t, []entity.TraceSummary{
		{Field: "scoping", Source: "scoping_dialogue", Confidence: conf(0.9)},
		{Field: "title", Source: "user_input: A", Confidence: conf(0.6)},
	}, l.Summary())
}

func TestTracesReturnsCopy(t *testing.T) {
	l := ledger.New(nil)
	l.Append(entity.ReasoningTrace{Field: "title"})

	out := l.Traces()
	out[0].Field = "changed"

	assert.Equal(t, "title", l.Traces()[0].Field)
}
