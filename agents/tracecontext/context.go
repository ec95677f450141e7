/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracecontext

import (
	"context"
	"maps"

	"chainguard.dev/evaltrace/agents/agenttrace"
	"chainguard.dev/evaltrace/agents/spancache"
	"github.com/chainguard-dev/clog"
)

// Configuration identifies the trace a TraceContext reads.
type Configuration struct {
	ObjectType string `json:"object_type"`
	ObjectID   string `json:"object_id"`
	RootSpanID string `json:"root_span_id"`
}

// TraceContext is a read-only view of the spans under one root.
type TraceContext struct {
	cfg     Configuration
	cache   *spancache.Cache
	fetcher Fetcher
	retry   RetryConfig
}

// Option configures a TraceContext.
type Option func(*TraceContext)

// WithFetcher sets a remote fallback used when the cache has no live entry
// for the root.
func WithFetcher(f Fetcher) Option {
	return func(t *TraceContext) {
		t.fetcher = f
	}
}

// WithRetryConfig overrides the retry policy for remote fetches.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(t *TraceContext) {
		t.retry = cfg
	}
}

// New creates a TraceContext for cfg backed by cache, which may be nil.
func New(cfg Configuration, cache *spancache.Cache, opts ...Option) *TraceContext {
	t := &TraceContext{
		cfg:   cfg,
		cache: cache,
		retry: DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Configuration returns the identifiers this context is bound to.
func (t *TraceContext) Configuration() Configuration {
	return t.cfg
}

// GetSpans returns the fields of every span under the root, in write order.
// When spanType is non-empty only spans whose span_attributes.type matches
// are returned. Scorer spans are always excluded.
func (t *TraceContext) GetSpans(ctx context.Context, spanType string) ([]map[string]any, error) {
	records, err := t.records(ctx)
	if err != nil {
		return nil, err
	}

	spans := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		if SpanAttribute(rec.Fields, "purpose") == agenttrace.PurposeScorer {
			continue
		}
		if spanType != "" && SpanAttribute(rec.Fields, "type") != spanType {
			continue
		}
		fields := maps.Clone(rec.Fields)
		if fields == nil {
			fields = make(map[string]any, 2)
		}
		fields["span_id"] = rec.SpanID
		fields["root_span_id"] = rec.RootID
		spans = append(spans, fields)
	}
	return spans, nil
}

// records returns the cached spans for the root, falling back to the fetcher.
func (t *TraceContext) records(ctx context.Context) ([]spancache.SpanRecord, error) {
	if t.cache != nil {
		if recs := t.cache.Get(t.cfg.RootSpanID); recs != nil {
			return recs, nil
		}
	}
	if t.fetcher == nil {
		return nil, nil
	}

	clog.FromContext(ctx).With("root_span_id", t.cfg.RootSpanID).
		Debugf("Span cache miss, fetching spans remotely")

	recs, err := fetchWithRetry(ctx, t.retry, t.fetcher, t.cfg)
	if err != nil {
		return nil, err
	}
	if t.cache != nil {
		for _, rec := range recs {
			t.cache.Write(t.cfg.RootSpanID, rec.SpanID, rec.Fields)
		}
	}
	return recs, nil
}

// SpanAttribute reads span_attributes[key] regardless of how the attributes
// were stored.
func SpanAttribute(fields map[string]any, key string) string {
	switch attrs := fields["span_attributes"].(type) {
	case map[string]any:
		s, _ := attrs[key].(string)
		return s
	case map[string]string:
		return attrs[key]
	case agenttrace.SpanAttributes:
		s, _ := attrs.Fields()[key].(string)
		return s
	default:
		return ""
	}
}
