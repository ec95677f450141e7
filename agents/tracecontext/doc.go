/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package tracecontext gives scorers read-only access to the spans of the trace
they are scoring.

A TraceContext is bound to one root span. It reads spans from a
spancache.Cache and, when the cache has nothing for the root, can fall back to
a remote Fetcher that queries the tracing backend.

	tc := tracecontext.New(tracecontext.Configuration{
		ObjectType: "experiment",
		ObjectID:   experimentID,
		RootSpanID: rootID,
	}, cache)

	llmSpans, err := tc.GetSpans(ctx, agenttrace.TypeLLM)
	thread, err := tc.GetThread(ctx)

Spans produced while scoring (span_attributes.purpose == "scorer") are never
returned, so a scorer cannot observe its siblings.
*/
package tracecontext
