/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package agenttrace provides the span vocabulary shared by the evaluation runner,
tasks, scorers, and the exporter.

# Overview

Every span carries machine-checkable attributes describing one step of an
LLM workload:

  - evaltrace.input, evaltrace.output, evaltrace.expected: JSON-encoded payloads
  - evaltrace.metadata, evaltrace.metrics, evaltrace.scores: JSON-encoded maps
  - evaltrace.span_attributes: JSON object with the span's type, name and purpose
  - evaltrace.parent: the Destination the span belongs to, used to route exports
  - evaltrace.origin: the dataset record a case came from

Spans started with StartSpan are also mirrored into the spancache.Cache registered
on the context, so scorers can read them back without a network round trip.

# Usage

Inject a tracer and a destination, then start spans:

	ctx = agenttrace.WithTracer(ctx, tp.Tracer("my-eval"))
	ctx = agenttrace.WithParent(ctx, agenttrace.Destination{
		Kind: agenttrace.ExperimentID,
		ID:   "4f6c1c1e",
	})

	ctx, span := agenttrace.StartSpan(ctx, "llm", agenttrace.SpanAttributes{Type: agenttrace.TypeLLM})
	defer span.End()
	span.Log(agenttrace.Event{
		Input:  []map[string]any{{"role": "user", "content": "hi"}},
		Output: map[string]any{"role": "assistant", "content": "hello"},
	})

Spans started from a context that already carries a span share its root ID;
otherwise the new span becomes the root of its own trace.
*/
package agenttrace
