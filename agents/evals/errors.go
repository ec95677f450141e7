/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"fmt"
	"strings"
)

// TaskError reports a task that failed for a case.
type TaskError struct {
	Input any
	Err   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("Task failed for input '%v': %v", e.Input, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// ScorerFailure is a single scorer's failure on a case.
type ScorerFailure struct {
	Scorer string
	Err    error
}

// ScorerError reports every scorer that failed for a case, in scorer order.
type ScorerError struct {
	Input    any
	Failures []ScorerFailure
}

func (e *ScorerError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Scorer, f.Err))
	}
	return fmt.Sprintf("Scorers failed for input '%v': %s", e.Input, strings.Join(parts, "; "))
}

func (e *ScorerError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
