package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "spec-copilot"

// TurnMetrics collects conversation turn metrics
type TurnMetrics struct {
	turnsCounter          metric.Int64Counter
	turnsFailedCounter    metric.Int64Counter
	fallbacksCounter      metric.Int64Counter
	specsCompletedCounter metric.Int64Counter
	turnDurationHistogram metric.Float64Histogram
}

// NewTurnMetrics registers the turn instruments on a meter from provider.
func NewTurnMetrics(provider metric.MeterProvider) (*TurnMetrics, error) {
	meter := provider.Meter(meterName)

	turnsCounter, err := meter.Int64Counter(
		"spec_copilot.turns.handled",
		metric.WithDescription("Total number of conversation turns handled"),
		metric.WithUnit("{turn}"),
	)
	if err != nil {
		return nil, err
	}

	turnsFailedCounter, err := meter.Int64Counter(
		"spec_copilot.turns.failed",
		metric.WithDescription("Total number of turns whose state was discarded"),
		metric.WithUnit("{turn}"),
	)
	if err != nil {
		return nil, err
	}

	fallbacksCounter, err := meter.Int64Counter(
		"spec_copilot.oracle.fallbacks",
		metric.WithDescription("Total number of recoveries from oracle failures"),
		metric.WithUnit("{fallback}"),
	)
	if err != nil {
		return nil, err
	}

	specsCompletedCounter, err := meter.Int64Counter(
		"spec_copilot.specs.completed",
		metric.WithDescription("Total number of final specifications produced"),
		metric.WithUnit("{spec}"),
	)
	if err != nil {
		return nil, err
	}

	turnDurationHistogram, err := meter.Float64Histogram(
		"spec_copilot.turn.duration",
		metric.WithDescription("Duration of a conversation turn in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &TurnMetrics{
		turnsCounter:          turnsCounter,
		turnsFailedCounter:    turnsFailedCounter,
		fallbacksCounter:      fallbacksCounter,
		specsCompletedCounter: specsCompletedCounter,
		turnDurationHistogram: turnDurationHistogram,
	}, nil
}

// RecordTurn records a turn that produced a persisted state
func (tm *TurnMetrics) RecordTurn(ctx context.Context, phase string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("phase", phase),
		attribute.String("status", "ok"),
	)
	tm.turnsCounter.Add(ctx, 1, attrs)
	tm.turnDurationHistogram.Record(ctx, duration.Seconds(), attrs)
}

// RecordTurnFailed records a turn that was rolled back
func (tm *TurnMetrics) RecordTurnFailed(ctx context.Context, phase, errorType string, duration time.Duration) {
	tm.turnsFailedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("phase", phase),
			attribute.String("error.type", errorType),
		),
	)
	tm.turnDurationHistogram.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("phase", phase),
			attribute.String("status", "failed"),
		),
	)
}

func (tm *TurnMetrics) RecordSpecCompleted(ctx context.Context, platform, challengeType string) {
	tm.specsCompletedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("platform", platform),
			attribute.String("challenge_type", challengeType),
		),
	)
}

// OracleFallback records a step that continued without a usable oracle reply
func (tm *TurnMetrics) OracleFallback(ctx context.Context, step string) {
	tm.fallbacksCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("step", step)),
	)
}
