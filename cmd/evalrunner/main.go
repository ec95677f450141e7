/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main runs a YAML suite of recorded cases through the built-in
// scorers and prints a markdown report.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chainguard.dev/evaltrace/agents/agenttrace"
	"chainguard.dev/evaltrace/agents/evals"
	"chainguard.dev/evaltrace/agents/evals/report"
	"chainguard.dev/evaltrace/agents/exporter"
	"chainguard.dev/evaltrace/agents/spancache"
	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sethvargo/go-envconfig"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type config struct {
	Cases           string        `env:"EVAL_CASES,required"`
	Parallelism     int           `env:"EVAL_PARALLELISM,default=4"`
	Threshold       float64       `env:"EVAL_THRESHOLD,default=0.8"`
	Parent          string        `env:"EVAL_PARENT"`
	CacheTTL        time.Duration `env:"SPAN_CACHE_TTL,default=1h"`
	CacheMaxEntries int           `env:"SPAN_CACHE_MAX_ENTRIES,default=1000"`

	// Spans are only exported when an endpoint is set.
	Endpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure bool   `env:"OTEL_INSECURE,default=false"`

	MetricsPort int `env:"METRICS_PORT,default=0"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}

	failed, err := run(ctx, cfg)
	if err != nil {
		clog.FatalContextf(ctx, "%v", err)
	}
	if failed {
		cancel()
		os.Exit(1)
	}
}

// run evaluates the suite and reports whether it fell below the threshold.
func run(ctx context.Context, cfg config) (bool, error) {
	s, err := loadSuite(cfg.Cases)
	if err != nil {
		return false, fmt.Errorf("loading suite: %w", err)
	}
	cases, err := s.cases()
	if err != nil {
		return false, fmt.Errorf("reading cases: %w", err)
	}
	scorers, err := scorersByName(s.Scorers)
	if err != nil {
		return false, fmt.Errorf("resolving scorers: %w", err)
	}

	if cfg.MetricsPort > 0 {
		go serveMetrics(ctx, cfg.MetricsPort)
	}

	var tpOpts []sdktrace.TracerProviderOption
	if cfg.Endpoint != "" {
		exp, err := exporter.NewOTLP(ctx, cfg.Endpoint, cfg.Insecure)
		if err != nil {
			return false, fmt.Errorf("creating exporter: %w", err)
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exp))
		clog.InfoContextf(ctx, "Exporting spans to %s", cfg.Endpoint)
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)
	defer func() {
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			clog.WarnContextf(ctx, "shutting down tracer provider: %v", err)
		}
	}()

	cache := spancache.New(spancache.WithTTL(cfg.CacheTTL), spancache.WithMaxEntries(cfg.CacheMaxEntries))
	cache.Start()
	defer cache.Stop()

	experiment := uuid.NewString()
	obs := evals.NewNamespacedObserver(func(name string) *evals.ResultCollector {
		return evals.NewResultCollector(evals.NewMetricsObserver(experiment, name))
	})
	runner, err := evals.NewRunner(s.replay(), scorers,
		evals.WithTracer(tp.Tracer(agenttrace.InstrumentationName)),
		evals.WithCache(cache),
		evals.WithExperiment(experiment, s.Experiment),
		evals.WithProject("", s.Project),
		evals.WithObserver(obs),
	)
	if err != nil {
		return false, fmt.Errorf("creating runner: %w", err)
	}

	runOpts := []evals.RunOption{evals.WithParallelism(cfg.Parallelism)}
	if cfg.Parent != "" {
		parent, err := agenttrace.ParseDestination(cfg.Parent)
		if err != nil {
			return false, fmt.Errorf("parsing parent: %w", err)
		}
		runOpts = append(runOpts, evals.WithParent(parent))
	}

	res, err := runner.Run(ctx, cases, runOpts...)
	if err != nil {
		return false, fmt.Errorf("running cases: %w", err)
	}

	summary, belowRun := report.Run(res, cfg.Threshold)
	detail, belowScorers := report.Simple(obs, cfg.Threshold)
	fmt.Println(summary)
	fmt.Println(detail)

	if belowRun || belowScorers {
		clog.ErrorContextf(ctx, "Experiment %s fell below threshold %.2f", res.ExperimentName, cfg.Threshold)
		return true, nil
	}
	return false, nil
}

func serveMetrics(ctx context.Context, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		clog.ErrorContextf(ctx, "serving metrics: %v", err)
	}
}
