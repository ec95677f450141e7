/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Case outcomes recorded on the case counter.
const (
	OutcomeSucceeded     = "succeeded"
	OutcomeTaskFailed    = "task_failed"
	OutcomeScorersFailed = "scorers_failed"
)

// Evals provides OpenTelemetry metrics for evaluation runs.
// It counts cases by outcome and scorer failures, and records case durations
// and score distributions, degrading to no-op instruments if creation fails.
type Evals struct {
	meter          metric.Meter
	cases          metric.Int64Counter
	scorerFailures metric.Int64Counter
	caseDuration   metric.Float64Histogram
	scores         metric.Float64Histogram
	attrEnricher   AttributeEnricher
}

// NewEvals creates evaluation metrics using the meter of the global provider.
func NewEvals(meterName string) *Evals {
	return NewEvalsWithProvider(otel.GetMeterProvider(), meterName)
}

// NewEvalsWithProvider creates evaluation metrics from an explicit provider.
// If any instrument fails to initialize, a warning is logged and a no-op
// instrument is used in its place.
func NewEvalsWithProvider(mp metric.MeterProvider, meterName string) *Evals {
	meter := mp.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	cases, err := meter.Int64Counter("eval.cases",
		metric.WithDescription("The number of evaluation cases completed, by outcome"),
		metric.WithUnit("{cases}"))
	if err != nil {
		slog.Warn("Failed to create case counter, metrics will be disabled", "error", err, "meter", meterName)
		cases = noop.Int64Counter{}
	}

	scorerFailures, err := meter.Int64Counter("eval.scorer.failures",
		metric.WithDescription("The number of scorer invocations that failed"),
		metric.WithUnit("{failures}"))
	if err != nil {
		slog.Warn("Failed to create scorer failure counter, metrics will be disabled", "error", err, "meter", meterName)
		scorerFailures = noop.Int64Counter{}
	}

	caseDuration, err := meter.Float64Histogram("eval.case.duration",
		metric.WithDescription("Wall time spent on a single case, task and scorers included"),
		metric.WithUnit("s"))
	if err != nil {
		slog.Warn("Failed to create case duration histogram, metrics will be disabled", "error", err, "meter", meterName)
		caseDuration = noop.Float64Histogram{}
	}

	scores, err := meter.Float64Histogram("eval.score",
		metric.WithDescription("Distribution of scores produced by scorers"),
		metric.WithUnit("1"))
	if err != nil {
		slog.Warn("Failed to create score histogram, metrics will be disabled", "error", err, "meter", meterName)
		scores = noop.Float64Histogram{}
	}

	return &Evals{
		meter:          meter,
		cases:          cases,
		scorerFailures: scorerFailures,
		caseDuration:   caseDuration,
		scores:         scores,
	}
}

// SetAttributeEnricher sets the attribute enricher for this metrics instance.
func (m *Evals) SetAttributeEnricher(enricher AttributeEnricher) {
	m.attrEnricher = enricher
}

// RecordCase records a completed case with its outcome and duration.
func (m *Evals) RecordCase(ctx context.Context, experiment, outcome string, d time.Duration, attrs ...attribute.KeyValue) {
	baseAttrs := m.enrich(ctx, []attribute.KeyValue{
		attribute.String("experiment", experiment),
		attribute.String("outcome", outcome),
	}, attrs)

	m.cases.Add(ctx, 1, metric.WithAttributes(baseAttrs...))
	m.caseDuration.Record(ctx, d.Seconds(), metric.WithAttributes(baseAttrs...))
}

// RecordScore records a single score produced by the named scorer.
func (m *Evals) RecordScore(ctx context.Context, experiment, scorer string, score float64, attrs ...attribute.KeyValue) {
	baseAttrs := m.enrich(ctx, []attribute.KeyValue{
		attribute.String("experiment", experiment),
		attribute.String("scorer", scorer),
	}, attrs)

	m.scores.Record(ctx, score, metric.WithAttributes(baseAttrs...))
}

// RecordScorerFailure records a failed scorer invocation.
func (m *Evals) RecordScorerFailure(ctx context.Context, experiment, scorer string, attrs ...attribute.KeyValue) {
	baseAttrs := m.enrich(ctx, []attribute.KeyValue{
		attribute.String("experiment", experiment),
		attribute.String("scorer", scorer),
	}, attrs)

	m.scorerFailures.Add(ctx, 1, metric.WithAttributes(baseAttrs...))
}

func (m *Evals) enrich(ctx context.Context, base, extra []attribute.KeyValue) []attribute.KeyValue {
	if m.attrEnricher != nil {
		base = m.attrEnricher(ctx, base)
	}
	return append(base, extra...)
}
