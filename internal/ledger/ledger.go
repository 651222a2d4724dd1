// Package ledger keeps the append-only record of how specification values were derived.
package ledger

import "github.com/futig/spec-copilot/internal/entity"

// Ledger is an append-only sequence of reasoning traces.
// Append order is the total order of the ledger.
type Ledger struct {
	traces []entity.ReasoningTrace
}

// New returns a ledger seeded with a copy of traces.
func New(traces []entity.ReasoningTrace) *Ledger {
	return &Ledger{traces: append([]entity.ReasoningTrace{}, traces...)}
}

func (l *Ledger) Append(trace entity.ReasoningTrace) {
	l.traces = append(l.traces, trace)
}

// TracesFor returns every trace for field in append order.
func (l *Ledger) TracesFor(field string) []entity.ReasoningTrace {
	var out []entity.ReasoningTrace
	for _, t := range l.traces {
		if t.Field == field {
			out = append(out, t)
		}
	}
	return out
}

// Latest returns the authoritative trace for field.
func (l *Ledger) Latest(field string) (entity.ReasoningTrace, bool) {
	for i := len(l.traces) - 1; i >= 0; i-- {
		if l.traces[i].Field == field {
			return l.traces[i], true
		}
	}
	return entity.ReasoningTrace{}, false
}

// LatestValue returns the value carried by the last trace for field that has one.
// Only field answers carry values, so scoping and selection traces are skipped.
func (l *Ledger) LatestValue(field string) (any, bool) {
	for i := len(l.traces) - 1; i >= 0; i-- {
		if l.traces[i].Field == field && l.traces[i].Value != nil {
			return l.traces[i].Value, true
		}
	}
	return nil, false
}

// Traces returns a copy of the whole ledger.
func (l *Ledger) Traces() []entity.ReasoningTrace {
	return append([]entity.ReasoningTrace{}, l.traces...)
}

func (l *Ledger) Len() int {
	return len(l.traces)
}

// Summary returns the externally visible part of every trace in append order.
func (l *Ledger) Summary() []entity.TraceSummary {
	out := make([]entity.TraceSummary, 0, len(l.traces))
	for _, t := range l.traces {
		out = append(out, entity.TraceSummary{
			Field:      t.Field,
			Source:     t.Source,
			Confidence: t.Confidence,
		})
	}
	return out
}
