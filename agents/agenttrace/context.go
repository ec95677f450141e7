/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"go.opentelemetry.io/otel"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the scope used for the default tracer.
const InstrumentationName = "chainguard.dev/evaltrace"

// contextKey is used for storing values in context.Context
type contextKey string

const (
	tracerKey contextKey = "tracer"
	parentKey contextKey = "parent"
	spanKey   contextKey = "span"
)

// WithTracer returns a new context carrying the tracer used by StartSpan.
func WithTracer(ctx context.Context, tracer oteltrace.Tracer) context.Context {
	return context.WithValue(ctx, tracerKey, tracer)
}

// TracerFromContext returns the tracer from the context, or the tracer of the
// global provider if none was injected.
func TracerFromContext(ctx context.Context) oteltrace.Tracer {
	if tracer, ok := ctx.Value(tracerKey).(oteltrace.Tracer); ok && tracer != nil {
		return tracer
	}
	return otel.Tracer(InstrumentationName, oteltrace.WithInstrumentationVersion("1.0.0"))
}

// WithParent returns a new context whose spans are routed to dest.
func WithParent(ctx context.Context, dest Destination) context.Context {
	return context.WithValue(ctx, parentKey, dest)
}

// ParentFromContext returns the destination set by WithParent, if any.
func ParentFromContext(ctx context.Context) (Destination, bool) {
	dest, ok := ctx.Value(parentKey).(Destination)
	if !ok || dest.IsZero() {
		return Destination{}, false
	}
	return dest, true
}

// SpanFromContext returns the innermost span started with StartSpan, or nil.
func SpanFromContext(ctx context.Context) *Span {
	if span, ok := ctx.Value(spanKey).(*Span); ok {
		return span
	}
	return nil
}

func withSpan(ctx context.Context, span *Span) context.Context {
	return context.WithValue(ctx, spanKey, span)
}
