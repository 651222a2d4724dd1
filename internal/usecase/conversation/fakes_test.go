package conversation_test

import (
	"context"
	"strings"
	"sync"

	"github.com/futig/spec-copilot/internal/entity"
)

type replyFunc func(messages []entity.Message) (string, error)

// scriptedOracle answers each kind of prompt with its own script.
// A nil script answers with an empty reply.
type scriptedOracle struct {
	scoping    replyFunc
	selection  replyFunc
	question   replyFunc
	extraction replyFunc

	mu    sync.Mutex
	calls map[string]int
}

func (o *scriptedOracle) Complete(_ context.Context, messages []entity.Message) (string, error) {
	kind := promptKind(messages[0].Content)

	o.mu.Lock()
	if o.calls == nil {
		o.calls = map[string]int{}
	}
	o.calls[kind]++
	o.mu.Unlock()

	var fn replyFunc
	switch kind {
	case "scoping":
		fn = o.scoping
	case "selection":
		fn = o.selection
	case "question":
		fn = o.question
	case "extraction":
		fn = o.extraction
	}

	if fn == nil {
		return "", nil
	}
	return fn(messages)
}

func (o *scriptedOracle) count(kind string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls[kind]
}

func promptKind(system string) string {
	switch {
	case strings.Contains(system, "You are processing the user's answer"):
		return "extraction"
	case strings.Contains(system, "You are asking about the"):
		return "question"
	case strings.Contains(system, "RECOMMENDATION:"):
		return "selection"
	case strings.Contains(system, "SCOPE_CONFIRMED"):
		return "scoping"
	default:
		return "unknown"
	}
}

func reply(text string) replyFunc {
	return func([]entity.Message) (string, error) { return text, nil }
}

func fail(err error) replyFunc {
	return func([]entity.Message) (string, error) { return "", err }
}

type staticSuggestions struct {
	specs   []entity.SimilarSpec
	queries []string
}

func (s *staticSuggestions) Search(_ context.Context, query string, limit int) []entity.SimilarSpec {
	s.queries = append(s.queries, query)
	if limit <= 0 {
		return []entity.SimilarSpec{}
	}
	return append([]entity.SimilarSpec{}, s.specs[:min(len(s.specs), limit)]...)
}

type countingRecorder struct {
	mu    sync.Mutex
	steps []string
}

func (r *countingRecorder) OracleFallback(_ context.Context, step string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, step)
}
