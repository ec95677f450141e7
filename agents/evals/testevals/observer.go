/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package testevals

import (
	"fmt"
	"sync/atomic"
	"testing"

	"chainguard.dev/evaltrace/agents/evals"
)

// observer reports case outcomes through a testing.TB.
type observer struct {
	tb        testing.TB
	prefix    string
	threshold float64
	count     atomic.Int64
}

// Option configures an observer.
type Option func(*observer)

// WithThreshold fails the test for any grade below min.
func WithThreshold(min float64) Option {
	return func(o *observer) { o.threshold = min }
}

// New creates an Observer that fails tb on every task or scorer failure.
func New(tb testing.TB, opts ...Option) evals.Observer {
	return NewPrefix(tb, "", opts...)
}

// NewPrefix is like New but prefixes every message.
func NewPrefix(tb testing.TB, prefix string, opts ...Option) evals.Observer {
	o := &observer{tb: tb, prefix: prefix}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Namespaced returns a NamespacedObserver whose nodes report through tb,
// prefixed with their path. Runners given it report each scorer separately.
func Namespaced(tb testing.TB, opts ...Option) *evals.NamespacedObserver[evals.Observer] {
	return evals.NewNamespacedObserver(func(name string) evals.Observer {
		return NewPrefix(tb, name, opts...)
	})
}

func (o *observer) format(msg string) string {
	if o.prefix == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", o.prefix, msg)
}

func (o *observer) Fail(msg string) {
	o.tb.Helper()
	o.tb.Error(o.format(msg))
}

func (o *observer) Log(msg string) {
	o.tb.Helper()
	o.tb.Log(o.format(msg))
}

func (o *observer) Grade(score float64, reasoning string) {
	o.tb.Helper()
	msg := o.format(fmt.Sprintf("Grade: %.2f - %s", score, reasoning))
	if score < o.threshold {
		o.tb.Errorf("%s (below %.2f)", msg, o.threshold)
		return
	}
	o.tb.Log(msg)
}

func (o *observer) Increment() { o.count.Add(1) }

func (o *observer) Total() int64 { return o.count.Load() }
