/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsObserver(t *testing.T) {
	observer := NewMetricsObserver("exp-metrics", "/exact")

	if observer.Total() != 0 {
		t.Errorf("initial total: got = %d, wanted = 0", observer.Total())
	}

	observer.Increment()
	observer.Increment()
	observer.Grade(0.85, "good result")
	observer.Fail("test failure")
	observer.Log("ignored")

	if got := observer.Total(); got != 2 {
		t.Errorf("total: got = %d, wanted = 2", got)
	}
	if got := testutil.ToFloat64(caseCounter.WithLabelValues("exp-metrics", "/exact")); got != 2 {
		t.Errorf("cases: got = %v, wanted = 2", got)
	}
	if got := testutil.ToFloat64(failureCounter.WithLabelValues("exp-metrics", "/exact")); got != 1 {
		t.Errorf("failures: got = %v, wanted = 1", got)
	}
	if got := testutil.ToFloat64(gradeGauge.WithLabelValues("exp-metrics", "/exact")); got != 0.85 {
		t.Errorf("grade: got = %v, wanted = 0.85", got)
	}
}

func TestMetricsObserverConcurrency(t *testing.T) {
	observer := NewMetricsObserver("exp-concurrent", "/")

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				observer.Increment()
				observer.Grade(0.5, "")
			}
		}()
	}
	wg.Wait()

	if got := observer.Total(); got != 100 {
		t.Errorf("total: got = %d, wanted = 100", got)
	}
	if got := testutil.ToFloat64(caseCounter.WithLabelValues("exp-concurrent", "/")); got != 100 {
		t.Errorf("cases: got = %v, wanted = 100", got)
	}
}
