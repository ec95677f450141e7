/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package spancache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	evictionTTL = "ttl"
	evictionLRU = "lru"
)

var (
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "evaltrace_span_cache_hits_total",
			Help: "Total number of span cache reads that found a live root",
		},
	)

	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "evaltrace_span_cache_misses_total",
			Help: "Total number of span cache reads that found no live root",
		},
	)

	cacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaltrace_span_cache_evictions_total",
			Help: "Total number of roots evicted from the span cache",
		},
		[]string{"reason"},
	)

	// Summed across every Cache in the process.
	rootsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "evaltrace_span_cache_roots",
			Help: "Number of roots currently held by span caches",
		},
	)
)
