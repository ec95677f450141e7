/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"chainguard.dev/evaltrace/agents/agenttrace"
	"chainguard.dev/evaltrace/agents/tracecontext"
)

var errNoTrace = errors.New("no trace context")

func pass(name string) Score {
	one := 1.0
	return Score{Name: name, Score: &one}
}

func fail(name, reasoning string) Score {
	zero := 0.0
	return Score{Name: name, Score: &zero, Metadata: map[string]any{"reasoning": reasoning}}
}

// ExactMatch scores 1 when the output equals the expected value, either
// structurally or by JSON encoding.
func ExactMatch() Scorer {
	return MustScorer("exact_match", ScorerFunc3(func(_ context.Context, _, expected, output any) (any, error) {
		if reflect.DeepEqual(expected, output) || agenttrace.Encode(expected) == agenttrace.Encode(output) {
			return pass("exact_match"), nil
		}
		return fail("exact_match", fmt.Sprintf("output: got = %v, wanted = %v", output, expected)), nil
	}))
}

// Contains scores 1 when the output's text contains the expected value's text.
// Cases without an expected value are not scored.
func Contains() Scorer {
	return MustScorer("contains", ScorerFunc3(func(_ context.Context, _, expected, output any) (any, error) {
		if expected == nil {
			return nil, nil
		}
		want := fmt.Sprint(expected)
		if strings.Contains(fmt.Sprint(output), want) {
			return pass("contains"), nil
		}
		return fail("contains", fmt.Sprintf("output does not contain %q", want)), nil
	}))
}

// ResultValidator scores 1 when validator accepts the output. A nil output
// always scores 0.
func ResultValidator(name string, validator func(output any) error) Scorer {
	return MustScorer(name, ScorerFunc3(func(_ context.Context, _, _, output any) (any, error) {
		v := reflect.ValueOf(output)
		if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
			return fail(name, "result is nil"), nil
		}
		if err := validator(output); err != nil {
			return fail(name, err.Error()), nil
		}
		return pass(name), nil
	}))
}

// toolCalls returns the names of the tool spans recorded for the case.
func toolCalls(ctx context.Context, tc *tracecontext.TraceContext) ([]string, error) {
	if tc == nil {
		return nil, errNoTrace
	}
	spans, err := tc.GetSpans(ctx, agenttrace.TypeTool)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(spans))
	for _, s := range spans {
		names = append(names, tracecontext.SpanAttribute(s, "name"))
	}
	return names, nil
}

func toolCallScorer(name string, check func(calls []string) string) Scorer {
	return MustScorer(name, ScorerFunc5(func(ctx context.Context, _, _, _ any, _ map[string]any, tc *tracecontext.TraceContext) (any, error) {
		calls, err := toolCalls(ctx, tc)
		if err != nil {
			return nil, err
		}
		if msg := check(calls); msg != "" {
			return fail(name, msg), nil
		}
		return pass(name), nil
	}))
}

// ExactToolCalls scores 1 when the case made exactly n tool calls.
func ExactToolCalls(n int) Scorer {
	return toolCallScorer("tool_calls", func(calls []string) string {
		if got := len(calls); got != n {
			return fmt.Sprintf("tool call count: got = %d, wanted = %d", got, n)
		}
		return ""
	})
}

// MinimumNToolCalls scores 1 when the case made at least n tool calls.
func MinimumNToolCalls(n int) Scorer {
	return toolCallScorer("tool_calls", func(calls []string) string {
		if got := len(calls); got < n {
			return fmt.Sprintf("tool call count: got = %d, wanted >= %d", got, n)
		}
		return ""
	})
}

// MaximumNToolCalls scores 1 when the case made at most n tool calls.
func MaximumNToolCalls(n int) Scorer {
	return toolCallScorer("tool_calls", func(calls []string) string {
		if got := len(calls); got > n {
			return fmt.Sprintf("tool call count: got = %d, wanted <= %d", got, n)
		}
		return ""
	})
}

// RangeToolCalls scores 1 when the number of tool calls is within [min, max].
func RangeToolCalls(min, max int) Scorer {
	return toolCallScorer("tool_calls", func(calls []string) string {
		if got := len(calls); got < min || got > max {
			return fmt.Sprintf("tool call count: got = %d, wanted = %d..%d", got, min, max)
		}
		return ""
	})
}

// NoToolCalls scores 1 when the case made no tool calls.
func NoToolCalls() Scorer {
	return ExactToolCalls(0)
}

// OnlyToolCalls scores 1 when every tool call used one of the given tools.
func OnlyToolCalls(toolNames ...string) Scorer {
	allowed := make(map[string]struct{}, len(toolNames))
	for _, name := range toolNames {
		allowed[name] = struct{}{}
	}
	return toolCallScorer("only_tool_calls", func(calls []string) string {
		for _, c := range calls {
			if _, ok := allowed[c]; !ok {
				return fmt.Sprintf("unexpected tool call %q, only allowed: %v", c, toolNames)
			}
		}
		return ""
	})
}

// RequiredToolCalls scores 1 when each of the given tools was called at least
// once.
func RequiredToolCalls(toolNames []string) Scorer {
	base := make(map[string]struct{}, len(toolNames))
	for _, name := range toolNames {
		base[name] = struct{}{}
	}
	return toolCallScorer("required_tool_calls", func(calls []string) string {
		required := maps.Clone(base)
		for _, c := range calls {
			delete(required, c)
		}
		if len(required) > 0 {
			return fmt.Sprintf("missing required tool calls: %v", slices.Sorted(maps.Keys(required)))
		}
		return ""
	})
}

// NoErrors scores 1 when no span recorded for the case carries an error.
func NoErrors() Scorer {
	return MustScorer("no_errors", ScorerFunc5(func(ctx context.Context, _, _, _ any, _ map[string]any, tc *tracecontext.TraceContext) (any, error) {
		if tc == nil {
			return nil, errNoTrace
		}
		spans, err := tc.GetSpans(ctx, "")
		if err != nil {
			return nil, err
		}
		for _, s := range spans {
			if msg, ok := s["error"].(string); ok {
				name := tracecontext.SpanAttribute(s, "name")
				return fail("no_errors", fmt.Sprintf("span %s error: got = %v, wanted = nil", name, msg)), nil
			}
		}
		return pass("no_errors"), nil
	}))
}
