/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals_test

import (
	"errors"
	"slices"
	"testing"

	"chainguard.dev/evaltrace/agents/evals"
	"github.com/google/go-cmp/cmp"
)

func TestCasesFrom(t *testing.T) {
	origin := &evals.Origin{ObjectType: "dataset", ObjectID: "ds", ID: "1", XactID: "9"}
	want := []evals.EvalCase{
		{Input: "a", Expected: "A", Tags: []string{"t"}, Metadata: map[string]any{"k": "v"}, Origin: origin},
		{Input: "b"},
	}

	tests := []struct {
		name string
		in   any
	}{{
		name: "cases",
		in:   want,
	}, {
		name: "pointers",
		in:   []*evals.EvalCase{&want[0], &want[1]},
	}, {
		name: "records",
		in: []map[string]any{{
			"input":    "a",
			"expected": "A",
			"tags":     []any{"t"},
			"metadata": map[string]any{"k": "v"},
			"origin":   map[string]any{"object_type": "dataset", "object_id": "ds", "id": "1", "_xact_id": "9"},
		}, {
			"input": "b",
		}},
	}, {
		name: "mixed",
		in:   []any{want[0], map[string]any{"input": "b"}},
	}, {
		name: "sequence",
		in:   evals.SliceCases(want...),
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cases, err := evals.CasesFrom(tt.in)
			if err != nil {
				t.Fatalf("CasesFrom: %v", err)
			}
			if diff := cmp.Diff(want, slices.Collect(cases)); diff != "" {
				t.Errorf("cases (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCasesFromErrors(t *testing.T) {
	for name, in := range map[string]any{
		"nil":          nil,
		"string":       "nope",
		"nil pointer":  []*evals.EvalCase{nil},
		"bad tags":     []map[string]any{{"input": 1, "tags": "x"}},
		"bad tag":      []map[string]any{{"input": 1, "tags": []any{1}}},
		"bad metadata": []map[string]any{{"input": 1, "metadata": 1}},
		"bad origin":   []map[string]any{{"input": 1, "origin": "x"}},
		"bad record":   []any{42},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := evals.CasesFrom(in); !errors.Is(err, evals.ErrInvalidCases) {
				t.Errorf("error: got = %v, wanted = %v", err, evals.ErrInvalidCases)
			}
		})
	}
}

func TestSeqCasesIsLazy(t *testing.T) {
	pulled := 0
	records := func(yield func(any) bool) {
		for _, r := range []any{map[string]any{"input": 1}, 2, map[string]any{"input": 3}} {
			pulled++
			if !yield(r) {
				return
			}
		}
	}

	var got []any
	for c := range evals.SeqCases(records) {
		got = append(got, c.Input)
		if len(got) == 2 {
			break
		}
	}
	if diff := cmp.Diff([]any{1, 2}, got); diff != "" {
		t.Errorf("inputs (-want +got):\n%s", diff)
	}
	if pulled != 2 {
		t.Errorf("records pulled: got = %d, wanted = 2", pulled)
	}
}
