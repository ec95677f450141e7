/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"slices"
	"sync"
)

// Grade is a recorded score with the reasoning behind it.
type Grade struct {
	Score     float64
	Reasoning string
}

// Summary condenses what a ResultCollector saw.
type Summary struct {
	Total    int64
	Failures int
	Grades   int
	Mean     float64
	Min      float64
	Max      float64
	// Below counts grades strictly under the threshold passed to Summarize.
	Below int
}

// PassRate is the share of observed cases that did not fail.
func (s Summary) PassRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Total-int64(s.Failures)) / float64(s.Total)
}

// ResultCollector wraps an Observer and keeps the failures and grades it sees.
// Failures are forwarded to the inner observer as logs.
type ResultCollector struct {
	inner    Observer
	failures []string
	grades   []Grade
	mu       sync.Mutex
}

// NewResultCollector creates a ResultCollector wrapping inner. A nil inner
// observer discards everything.
func NewResultCollector(inner Observer) *ResultCollector {
	if inner == nil {
		inner = nopObserver{}
	}
	return &ResultCollector{inner: inner}
}

func (r *ResultCollector) Fail(msg string) {
	r.inner.Log(msg)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, msg)
}

func (r *ResultCollector) Log(msg string) {
	r.inner.Log(msg)
}

func (r *ResultCollector) Grade(score float64, reasoning string) {
	r.inner.Grade(score, reasoning)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.grades = append(r.grades, Grade{Score: score, Reasoning: reasoning})
}

func (r *ResultCollector) Increment() { r.inner.Increment() }

func (r *ResultCollector) Total() int64 { return r.inner.Total() }

// Failures returns a copy of the collected failure messages.
func (r *ResultCollector) Failures() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.failures)
}

// Grades returns a copy of the collected grades.
func (r *ResultCollector) Grades() []Grade {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.grades)
}

// Summarize computes aggregate statistics over the collected results.
func (r *ResultCollector) Summarize(threshold float64) Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{
		Total:    r.inner.Total(),
		Failures: len(r.failures),
		Grades:   len(r.grades),
	}
	for i, g := range r.grades {
		if i == 0 || g.Score < s.Min {
			s.Min = g.Score
		}
		if i == 0 || g.Score > s.Max {
			s.Max = g.Score
		}
		if g.Score < threshold {
			s.Below++
		}
		s.Mean += g.Score
	}
	if len(r.grades) > 0 {
		s.Mean /= float64(len(r.grades))
	}
	return s
}
