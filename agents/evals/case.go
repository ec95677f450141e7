/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"fmt"
	"iter"
	"slices"

	"chainguard.dev/evaltrace/agents/agenttrace"
)

// Origin links a case back to the dataset record it came from.
type Origin = agenttrace.Origin

// EvalCase is a single labelled input. Cases are treated as immutable once
// handed to a Runner.
type EvalCase struct {
	Input    any            `json:"input" yaml:"input"`
	Expected any            `json:"expected,omitempty" yaml:"expected,omitempty"`
	Tags     []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Origin   *Origin        `json:"origin,omitempty" yaml:"origin,omitempty"`
}

// Cases is a lazily consumed sequence of cases. A Runner pulls from it one
// case at a time, regardless of parallelism.
type Cases = iter.Seq[EvalCase]

// SliceCases returns a sequence over the given cases.
func SliceCases(cases ...EvalCase) Cases {
	return slices.Values(cases)
}

// SeqCases adapts a sequence of arbitrary records, converting each with
// CaseFrom. Records that cannot be converted are passed through as the case
// input.
func SeqCases(records iter.Seq[any]) Cases {
	return func(yield func(EvalCase) bool) {
		for r := range records {
			c, err := CaseFrom(r)
			if err != nil {
				c = EvalCase{Input: r}
			}
			if !yield(c) {
				return
			}
		}
	}
}

// CasesFrom normalizes the supported case collections into a sequence:
// []EvalCase, []*EvalCase, []map[string]any, []any of those, iter.Seq[EvalCase]
// and Cases.
func CasesFrom(v any) (Cases, error) {
	switch cs := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrInvalidCases)
	case Cases:
		return cs, nil
	case func(func(EvalCase) bool):
		return cs, nil
	case []EvalCase:
		return SliceCases(cs...), nil
	case []*EvalCase:
		out := make([]EvalCase, 0, len(cs))
		for i, c := range cs {
			if c == nil {
				return nil, fmt.Errorf("%w: case %d is nil", ErrInvalidCases, i)
			}
			out = append(out, *c)
		}
		return SliceCases(out...), nil
	case []map[string]any:
		out := make([]EvalCase, 0, len(cs))
		for i, m := range cs {
			c, err := caseFromMap(m)
			if err != nil {
				return nil, fmt.Errorf("case %d: %w", i, err)
			}
			out = append(out, c)
		}
		return SliceCases(out...), nil
	case []any:
		out := make([]EvalCase, 0, len(cs))
		for i, r := range cs {
			c, err := CaseFrom(r)
			if err != nil {
				return nil, fmt.Errorf("case %d: %w", i, err)
			}
			out = append(out, c)
		}
		return SliceCases(out...), nil
	default:
		return nil, fmt.Errorf("%w: unsupported collection %T", ErrInvalidCases, v)
	}
}

// CaseFrom converts a single record into an EvalCase.
func CaseFrom(v any) (EvalCase, error) {
	switch r := v.(type) {
	case EvalCase:
		return r, nil
	case *EvalCase:
		if r == nil {
			return EvalCase{}, fmt.Errorf("%w: nil case", ErrInvalidCases)
		}
		return *r, nil
	case map[string]any:
		return caseFromMap(r)
	default:
		return EvalCase{}, fmt.Errorf("%w: unsupported record %T", ErrInvalidCases, v)
	}
}

func caseFromMap(m map[string]any) (EvalCase, error) {
	if m == nil {
		return EvalCase{}, fmt.Errorf("%w: nil record", ErrInvalidCases)
	}
	c := EvalCase{
		Input:    m["input"],
		Expected: m["expected"],
	}

	switch tags := m["tags"].(type) {
	case nil:
	case []string:
		c.Tags = tags
	case []any:
		for _, t := range tags {
			s, ok := t.(string)
			if !ok {
				return EvalCase{}, fmt.Errorf("%w: tag %v is not a string", ErrInvalidCases, t)
			}
			c.Tags = append(c.Tags, s)
		}
	default:
		return EvalCase{}, fmt.Errorf("%w: tags must be a list, got %T", ErrInvalidCases, tags)
	}

	switch md := m["metadata"].(type) {
	case nil:
	case map[string]any:
		c.Metadata = md
	default:
		return EvalCase{}, fmt.Errorf("%w: metadata must be a map, got %T", ErrInvalidCases, md)
	}

	origin, err := originFrom(m["origin"])
	if err != nil {
		return EvalCase{}, err
	}
	c.Origin = origin
	return c, nil
}

func originFrom(v any) (*Origin, error) {
	switch o := v.(type) {
	case nil:
		return nil, nil
	case Origin:
		return &o, nil
	case *Origin:
		return o, nil
	case map[string]any:
		str := func(key string) string {
			s, _ := o[key].(string)
			return s
		}
		return &Origin{
			ObjectType: str("object_type"),
			ObjectID:   str("object_id"),
			ID:         str("id"),
			XactID:     str("_xact_id"),
		}, nil
	default:
		return nil, fmt.Errorf("%w: origin must be a map, got %T", ErrInvalidCases, v)
	}
}
