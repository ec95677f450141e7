/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package exporter

import (
	"context"
	"fmt"

	"chainguard.dev/evaltrace/agents/agenttrace"
	"github.com/chainguard-dev/clog"
	"github.com/hashicorp/go-multierror"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Exporter splits span batches by destination and sends each group through
// the next exporter with ParentHeader set in State.
//
// ExportSpans must not be called concurrently, which the OpenTelemetry span
// processors guarantee.
type Exporter struct {
	next  sdktrace.SpanExporter
	state *State
}

var _ sdktrace.SpanExporter = (*Exporter)(nil)

// New wraps next. A nil state gets a fresh State.
func New(next sdktrace.SpanExporter, state *State) *Exporter {
	if state == nil {
		state = NewState()
	}
	return &Exporter{next: next, state: state}
}

// State returns the headers shared with the transport.
func (e *Exporter) State() *State { return e.state }

type group struct {
	parent string
	spans  []sdktrace.ReadOnlySpan
}

// partition groups spans by destination in order of first appearance.
// Spans without a destination form the last group, with an empty parent.
func partition(spans []sdktrace.ReadOnlySpan) []group {
	var (
		groups []group
		index  = make(map[string]int)
		orphan []sdktrace.ReadOnlySpan
	)
	for _, s := range spans {
		parent, ok := destination(s)
		if !ok {
			orphan = append(orphan, s)
			continue
		}
		i, seen := index[parent]
		if !seen {
			i = len(groups)
			index[parent] = i
			groups = append(groups, group{parent: parent})
		}
		groups[i].spans = append(groups[i].spans, s)
	}
	if len(orphan) > 0 {
		groups = append(groups, group{spans: orphan})
	}
	return groups
}

func destination(s sdktrace.ReadOnlySpan) (string, bool) {
	for _, kv := range s.Attributes() {
		if kv.Key == agenttrace.ParentKey {
			if v := kv.Value.AsString(); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

// ExportSpans sends one batch per destination. Every group is attempted and
// their errors are combined. A panic in the next exporter propagates at once
// and the remaining groups are not sent.
func (e *Exporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	if len(spans) == 0 {
		return nil
	}

	var errs *multierror.Error
	for _, g := range partition(spans) {
		if err := e.send(ctx, g); err != nil {
			name := g.parent
			if name == "" {
				name = "(none)"
			}
			clog.FromContext(ctx).Warnf("Failed to export %d spans to %s: %v", len(g.spans), name, err)
			errs = multierror.Append(errs, fmt.Errorf("exporting to %s: %w", name, err))
		}
	}
	return errs.ErrorOrNil()
}

func (e *Exporter) send(ctx context.Context, g group) error {
	if g.parent != "" {
		e.state.Set(ParentHeader, g.parent)
		defer e.state.Delete(ParentHeader)
	}
	return e.next.ExportSpans(ctx, g.spans)
}

// Shutdown shuts down the next exporter.
func (e *Exporter) Shutdown(ctx context.Context) error {
	return e.next.Shutdown(ctx)
}
