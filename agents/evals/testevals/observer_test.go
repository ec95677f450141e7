/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package testevals_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"chainguard.dev/evaltrace/agents/evals"
	"chainguard.dev/evaltrace/agents/evals/testevals"
)

// recordingTB captures what an observer reports without failing the real test.
type recordingTB struct {
	testing.TB

	mu     sync.Mutex
	errors []string
	logs   []string
}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Error(args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, fmt.Sprint(args...))
}

func (r *recordingTB) Errorf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *recordingTB) Log(args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, fmt.Sprint(args...))
}

func TestObserverPassesCleanRun(t *testing.T) {
	obs := testevals.Namespaced(t, testevals.WithThreshold(0.5))

	exact := evals.ExactMatch()
	runner, err := evals.NewRunner(evals.TaskFunc(func(_ context.Context, input any) (any, error) {
		return strings.ToUpper(input.(string)), nil
	}), []evals.Scorer{exact}, evals.WithObserver(obs))
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	if _, err := runner.Run(context.Background(), evals.SliceCases(
		evals.EvalCase{Input: "a", Expected: "A"},
		evals.EvalCase{Input: "b", Expected: "B"},
	)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := obs.Child("exact_match").Total(); got != 2 {
		t.Errorf("exact_match total: got = %d, wanted = 2", got)
	}
}

func TestObserverReportsFailures(t *testing.T) {
	tb := &recordingTB{}
	obs := evals.NewNamespacedObserver(func(name string) evals.Observer {
		return testevals.NewPrefix(tb, name, testevals.WithThreshold(0.5))
	})

	runner, err := evals.NewRunner(evals.TaskFunc(func(_ context.Context, input any) (any, error) {
		if input == "boom" {
			return nil, fmt.Errorf("exploded")
		}
		return input, nil
	}), []evals.Scorer{evals.ExactMatch()}, evals.WithObserver(obs))
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	if _, err := runner.Run(context.Background(), evals.SliceCases(
		evals.EvalCase{Input: "a", Expected: "a"},
		evals.EvalCase{Input: "b", Expected: "c"},
		evals.EvalCase{Input: "boom"},
	)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{
		"/exact_match: Grade: 0.00 - output: got = b, wanted = c (below 0.50)",
		"/: Task failed for input 'boom': exploded",
	}
	if len(tb.errors) != len(want) {
		t.Fatalf("errors: got = %q, wanted = %q", tb.errors, want)
	}
	for i := range want {
		if tb.errors[i] != want[i] {
			t.Errorf("error %d: got = %q, wanted = %q", i, tb.errors[i], want[i])
		}
	}
	if len(tb.logs) != 1 || !strings.HasPrefix(tb.logs[0], "/exact_match: Grade: 1.00") {
		t.Errorf("logs: got = %q, wanted one passing grade", tb.logs)
	}
}

func TestObserverCounts(t *testing.T) {
	obs := testevals.New(t)
	for range 3 {
		obs.Increment()
	}
	obs.Log("counted")
	if got := obs.Total(); got != 3 {
		t.Errorf("total: got = %d, wanted = 3", got)
	}
}
