/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"chainguard.dev/evaltrace/agents/spancache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Event is a partial update to a span's payload. Nil fields are left alone.
type Event struct {
	Input    any
	Output   any
	Expected any
	Metadata map[string]any
	Metrics  map[string]float64
	Scores   map[string]float64
}

// Span wraps an OpenTelemetry span and mirrors its payload into the span cache
// registered on the context it was started from.
type Span struct {
	rootID string
	spanID string
	attrs  SpanAttributes
	cache  *spancache.Cache
	span   oteltrace.Span
	mu     sync.Mutex // Protects ended
	ended  bool
}

// StartSpan starts a span named name as a child of any span on ctx. The
// returned context carries the new span. Spans started beneath a scorer span
// inherit its purpose.
func StartSpan(ctx context.Context, name string, attrs SpanAttributes, opts ...oteltrace.SpanStartOption) (context.Context, *Span) {
	return start(ctx, name, attrs, false, opts...)
}

// StartRoot starts a span that roots its own cache entry, even when ctx
// already carries a span. The OpenTelemetry parent and the destination are
// still taken from ctx, but the purpose is not inherited.
func StartRoot(ctx context.Context, name string, attrs SpanAttributes, opts ...oteltrace.SpanStartOption) (context.Context, *Span) {
	return start(ctx, name, attrs, true, opts...)
}

func start(ctx context.Context, name string, attrs SpanAttributes, root bool, opts ...oteltrace.SpanStartOption) (context.Context, *Span) {
	if attrs.Name == "" {
		attrs.Name = name
	}
	parent := SpanFromContext(ctx)
	if parent != nil && !root && attrs.Purpose == "" {
		attrs.Purpose = parent.attrs.Purpose
	}

	startAttrs := []attribute.KeyValue{
		JSON(SpanAttributesKey, attrs.Fields()),
	}
	if dest, ok := ParentFromContext(ctx); ok {
		startAttrs = append(startAttrs, ParentKey.String(dest.String()))
	}
	opts = append(opts, oteltrace.WithAttributes(startAttrs...))

	ctx, otelSpan := TracerFromContext(ctx).Start(ctx, name, opts...)

	spanID := otelSpan.SpanContext().SpanID().String()
	if !otelSpan.SpanContext().HasSpanID() {
		// Non-recording tracers hand out empty IDs, which would collide in the cache.
		spanID = generateSpanID()
	}
	rootID := spanID
	if parent != nil && !root {
		rootID = parent.rootID
	}
	otelSpan.SetAttributes(RootIDKey.String(rootID))

	s := &Span{
		rootID: rootID,
		spanID: spanID,
		attrs:  attrs,
		cache:  spancache.Current(ctx),
		span:   otelSpan,
	}
	s.mirror(spancache.Fields{"span_attributes": attrs.Fields()})

	return withSpan(ctx, s), s
}

// RootID returns the span ID of the trace root this span belongs to.
func (s *Span) RootID() string { return s.rootID }

// SpanID returns this span's ID.
func (s *Span) SpanID() string { return s.spanID }

// Attributes returns the attributes the span was started with.
func (s *Span) Attributes() SpanAttributes { return s.attrs }

// OTel returns the underlying OpenTelemetry span.
func (s *Span) OTel() oteltrace.Span { return s.span }

// Log records ev as span attributes and merges it into the cached record.
func (s *Span) Log(ev Event) {
	var attrs []attribute.KeyValue
	fields := spancache.Fields{}

	if ev.Input != nil {
		attrs = append(attrs, JSON(InputKey, ev.Input))
		fields["input"] = ev.Input
	}
	if ev.Output != nil {
		attrs = append(attrs, JSON(OutputKey, ev.Output))
		fields["output"] = ev.Output
	}
	if ev.Expected != nil {
		attrs = append(attrs, JSON(ExpectedKey, ev.Expected))
		fields["expected"] = ev.Expected
	}
	if ev.Metadata != nil {
		attrs = append(attrs, JSON(MetadataKey, ev.Metadata))
		fields["metadata"] = ev.Metadata
	}
	if ev.Metrics != nil {
		attrs = append(attrs, JSON(MetricsKey, ev.Metrics))
		fields["metrics"] = ev.Metrics
	}
	if ev.Scores != nil {
		attrs = append(attrs, JSON(ScoresKey, ev.Scores))
		fields["scores"] = ev.Scores
	}

	if len(attrs) > 0 {
		s.span.SetAttributes(attrs...)
	}
	s.mirror(fields)
}

// SetAttributes sets raw attributes on the underlying span without mirroring.
func (s *Span) SetAttributes(kv ...attribute.KeyValue) {
	s.span.SetAttributes(kv...)
}

// RecordError records err as an exception event and marks the span failed.
func (s *Span) RecordError(err error, opts ...oteltrace.EventOption) {
	if err == nil {
		return
	}
	s.span.RecordError(err, opts...)
	s.span.SetStatus(codes.Error, err.Error())
	s.mirror(spancache.Fields{"error": err.Error()})
}

// SetError marks the span failed without adding an exception event.
func (s *Span) SetError(msg string) {
	s.span.SetStatus(codes.Error, msg)
}

// End ends the span. Subsequent calls are no-ops.
func (s *Span) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	s.span.End()
}

func (s *Span) mirror(fields spancache.Fields) {
	if s.cache == nil || len(fields) == 0 {
		return
	}
	s.cache.Write(s.rootID, s.spanID, fields)
}

// generateSpanID returns a random 16 character hex ID
func generateSpanID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// Fallback to the clock if random generation fails
		return time.Now().Format("150405.000000000")
	}
	return hex.EncodeToString(b)
}
