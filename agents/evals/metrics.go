/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	caseCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaltrace_cases_total",
			Help: "Total number of evaluation cases observed",
		},
		[]string{"experiment", "namespace"},
	)

	failureCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaltrace_case_failures_total",
			Help: "Total number of task or scorer failures",
		},
		[]string{"experiment", "namespace"},
	)

	gradeGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "evaltrace_grade",
			Help: "Most recent score (0.0-1.0)",
		},
		[]string{"experiment", "namespace"},
	)
)

// MetricsObserver implements Observer with Prometheus metrics.
type MetricsObserver struct {
	count atomic.Int64

	caseCounter prometheus.Counter
	failCounter prometheus.Counter
	gradeGauge  prometheus.Gauge
}

var _ Observer = (*MetricsObserver)(nil)

// NewMetricsObserver creates a metrics observer for the given experiment and
// observer namespace.
func NewMetricsObserver(experiment, namespace string) *MetricsObserver {
	labels := prometheus.Labels{
		"experiment": experiment,
		"namespace":  namespace,
	}
	return &MetricsObserver{
		caseCounter: caseCounter.With(labels),
		failCounter: failureCounter.With(labels),
		gradeGauge:  gradeGauge.With(labels),
	}
}

func (m *MetricsObserver) Increment() {
	m.count.Add(1)
	m.caseCounter.Inc()
}

func (m *MetricsObserver) Fail(string) { m.failCounter.Inc() }

func (m *MetricsObserver) Grade(score float64, _ string) { m.gradeGauge.Set(score) }

// Log is a no-op.
func (m *MetricsObserver) Log(string) {}

func (m *MetricsObserver) Total() int64 { return m.count.Load() }
