/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"maps"
	"slices"
	"sort"
	"sync"
	"time"
)

// RunResult summarizes a single Run.
type RunResult struct {
	ExperimentID   string
	ExperimentName string
	ProjectID      string
	ProjectName    string

	// Errors holds one message per failed case, in case order.
	Errors []string
	// Duration is the wall time of the whole run.
	Duration time.Duration
	// Cases is the number of cases consumed.
	Cases int
	// Scores maps a score name to one entry per case, indexed by case. Cases
	// that produced no score under that name hold nil.
	Scores map[string][]*float64
}

// Success reports whether every case completed without error.
func (r *RunResult) Success() bool { return len(r.Errors) == 0 }

// Failed is the negation of Success.
func (r *RunResult) Failed() bool { return !r.Success() }

// ScoreNames returns the score names in sorted order.
func (r *RunResult) ScoreNames() []string {
	return slices.Sorted(maps.Keys(r.Scores))
}

// Values returns the recorded scores for name, skipping cases without one.
func (r *RunResult) Values(name string) []float64 {
	var out []float64
	for _, s := range r.Scores[name] {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// Mean returns the average of the recorded scores for name.
func (r *RunResult) Mean(name string) (float64, bool) {
	vs := r.Values(name)
	if len(vs) == 0 {
		return 0, false
	}
	var total float64
	for _, v := range vs {
		total += v
	}
	return total / float64(len(vs)), true
}

// caseOutcome is written only by the goroutine running the case.
type caseOutcome struct {
	scores map[string]float64
}

type caseError struct {
	index int
	msg   string
}

// runState is created per Run so nothing leaks across runs.
type runState struct {
	outcomes []*caseOutcome

	mu     sync.Mutex
	errors []caseError
}

// next allocates the outcome slot for the next case. It is only called from
// the goroutine consuming the case sequence.
func (s *runState) next() (int, *caseOutcome) {
	o := &caseOutcome{}
	s.outcomes = append(s.outcomes, o)
	return len(s.outcomes) - 1, o
}

func (s *runState) fail(index int, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, caseError{index: index, msg: msg})
}

// result merges the per-case outcomes. It must only be called once every
// case has finished.
func (s *runState) result() *RunResult {
	r := &RunResult{
		Cases:  len(s.outcomes),
		Scores: make(map[string][]*float64),
	}
	for i, o := range s.outcomes {
		for name, v := range o.scores {
			list, ok := r.Scores[name]
			if !ok {
				list = make([]*float64, len(s.outcomes))
				r.Scores[name] = list
			}
			list[i] = &v
		}
	}

	s.mu.Lock()
	errs := slices.Clone(s.errors)
	s.mu.Unlock()
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].index < errs[j].index })
	for _, e := range errs {
		r.Errors = append(r.Errors, e.msg)
	}
	return r
}
