/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"chainguard.dev/evaltrace/agents/tracecontext"
)

// ErrInvalidScorer is returned by NewScorer for unsupported function shapes.
var ErrInvalidScorer = errors.New("invalid scorer")

// ScoreArgs carries everything a scorer may look at for a single case.
type ScoreArgs struct {
	Input    any
	Expected any
	Output   any
	Metadata map[string]any
	// Trace exposes the spans recorded for the case so far. Scorer spans
	// are never visible through it.
	Trace *tracecontext.TraceContext
}

// Scorer grades the output of a task. Score may return nil (no score), a
// number, a Score, a *Score, a []Score or a map with "name" and "score" keys.
type Scorer interface {
	Name() string
	Score(ctx context.Context, args ScoreArgs) (any, error)
}

// ScorerFunc3 scores from the input, expected value and output.
type ScorerFunc3 func(ctx context.Context, input, expected, output any) (any, error)

// ScorerFunc4 additionally receives the case metadata.
type ScorerFunc4 func(ctx context.Context, input, expected, output any, metadata map[string]any) (any, error)

// ScorerFunc5 additionally receives the case's trace context.
type ScorerFunc5 func(ctx context.Context, input, expected, output any, metadata map[string]any, trace *tracecontext.TraceContext) (any, error)

type arity int

const (
	arity3 arity = 3
	arity4 arity = 4
	arity5 arity = 5
)

type funcScorer struct {
	name  string
	arity arity
	f3    ScorerFunc3
	f4    ScorerFunc4
	f5    ScorerFunc5
}

var _ Scorer = (*funcScorer)(nil)

// NewScorer wraps fn as a named Scorer. The function shape is resolved once,
// here, and fn must be one of the ScorerFunc variants or the equivalent
// unnamed function type.
func NewScorer(name string, fn any) (Scorer, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidScorer)
	}
	s := &funcScorer{name: name}
	switch f := fn.(type) {
	case ScorerFunc3:
		s.arity, s.f3 = arity3, f
	case func(context.Context, any, any, any) (any, error):
		s.arity, s.f3 = arity3, f
	case ScorerFunc4:
		s.arity, s.f4 = arity4, f
	case func(context.Context, any, any, any, map[string]any) (any, error):
		s.arity, s.f4 = arity4, f
	case ScorerFunc5:
		s.arity, s.f5 = arity5, f
	case func(context.Context, any, any, any, map[string]any, *tracecontext.TraceContext) (any, error):
		s.arity, s.f5 = arity5, f
	default:
		return nil, fmt.Errorf("%w: %s has unsupported type %T", ErrInvalidScorer, name, fn)
	}
	if s.f3 == nil && s.f4 == nil && s.f5 == nil {
		return nil, fmt.Errorf("%w: %s is nil", ErrInvalidScorer, name)
	}
	return s, nil
}

// MustScorer is like NewScorer but panics on error. It is intended for
// package level scorer tables.
func MustScorer(name string, fn any) Scorer {
	s, err := NewScorer(name, fn)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *funcScorer) Name() string { return s.name }

func (s *funcScorer) Score(ctx context.Context, args ScoreArgs) (any, error) {
	switch s.arity {
	case arity3:
		return s.f3(ctx, args.Input, args.Expected, args.Output)
	case arity4:
		return s.f4(ctx, args.Input, args.Expected, args.Output, args.Metadata)
	default:
		return s.f5(ctx, args.Input, args.Expected, args.Output, args.Metadata, args.Trace)
	}
}

// Score is a single named score. A nil Score value means the scorer chose
// not to score the case.
type Score struct {
	Name     string         `json:"name"`
	Score    *float64       `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// normalizeScores converts whatever a scorer returned into named scores.
// Unnamed structured scores take the scorer's name.
func normalizeScores(scorer string, v any) ([]Score, error) {
	switch r := v.(type) {
	case nil:
		return nil, nil
	case Score:
		return []Score{named(scorer, r)}, nil
	case *Score:
		if r == nil {
			return nil, nil
		}
		return []Score{named(scorer, *r)}, nil
	case []Score:
		out := make([]Score, 0, len(r))
		for _, s := range r {
			out = append(out, named(scorer, s))
		}
		return out, nil
	case map[string]any:
		s, err := scoreFromMap(scorer, r)
		if err != nil {
			return nil, err
		}
		return []Score{s}, nil
	case []any:
		var out []Score
		for _, item := range r {
			ss, err := normalizeScores(scorer, item)
			if err != nil {
				return nil, err
			}
			out = append(out, ss...)
		}
		return out, nil
	}
	if f, ok := toFloat(v); ok {
		return []Score{{Name: scorer, Score: &f}}, nil
	}
	return nil, fmt.Errorf("unsupported score type %T", v)
}

func named(scorer string, s Score) Score {
	if s.Name == "" {
		s.Name = scorer
	}
	return s
}

func scoreFromMap(scorer string, m map[string]any) (Score, error) {
	s := Score{Name: scorer}
	if name, ok := m["name"].(string); ok && name != "" {
		s.Name = name
	}
	if md, ok := m["metadata"].(map[string]any); ok {
		s.Metadata = md
	}
	raw, ok := m["score"]
	if !ok || raw == nil {
		return s, nil
	}
	f, ok := toFloat(raw)
	if !ok {
		return Score{}, fmt.Errorf("score %q is %T, not a number", s.Name, raw)
	}
	s.Score = &f
	return s, nil
}

func toFloat(v any) (float64, bool) {
	if b, ok := v.(bool); ok {
		if b {
			return 1, true
		}
		return 0, true
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanFloat():
		return rv.Float(), true
	case rv.CanInt():
		return float64(rv.Int()), true
	case rv.CanUint():
		return float64(rv.Uint()), true
	default:
		return 0, false
	}
}
