/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracecontext

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"chainguard.dev/evaltrace/agents/spancache"
	"github.com/chainguard-dev/clog"
)

// ErrNotIngested is returned by a Fetcher when the backend has not yet
// ingested the requested spans. Fetches failing with it are retried.
var ErrNotIngested = errors.New("spans not yet ingested")

// Fetcher queries spans for a root from a remote tracing backend.
type Fetcher interface {
	FetchSpans(ctx context.Context, cfg Configuration) ([]spancache.SpanRecord, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, cfg Configuration) ([]spancache.SpanRecord, error)

// FetchSpans implements Fetcher.
func (f FetcherFunc) FetchSpans(ctx context.Context, cfg Configuration) ([]spancache.SpanRecord, error) {
	return f(ctx, cfg)
}

// RetryConfig configures retries of remote span fetches.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts. 0 means do not retry.
	MaxRetries int
	// BaseBackoff is the initial backoff duration
	BaseBackoff time.Duration
	// MaxBackoff caps the backoff duration
	MaxBackoff time.Duration
	// MaxJitter is the maximum random jitter added to each backoff
	MaxJitter time.Duration
}

// DefaultRetryConfig returns the policy used when none is configured.
// Ingestion lag is usually short, so backoffs start small.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  4,
		BaseBackoff: 250 * time.Millisecond,
		MaxBackoff:  4 * time.Second,
		MaxJitter:   100 * time.Millisecond,
	}
}

// Validate checks that the retry configuration has valid values.
func (c RetryConfig) Validate() error {
	if c.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	if c.BaseBackoff < 0 || c.MaxBackoff < 0 || c.MaxJitter < 0 {
		return errors.New("backoff durations cannot be negative")
	}
	return nil
}

// backoffFor returns BaseBackoff * 2^attempt capped at MaxBackoff. The cap is
// checked before shifting so large attempts cannot overflow.
func backoffFor(cfg RetryConfig, attempt int) time.Duration {
	if attempt >= 62 || cfg.BaseBackoff > cfg.MaxBackoff>>attempt {
		return cfg.MaxBackoff
	}
	return cfg.BaseBackoff << attempt
}

// fetchWithRetry calls the fetcher with exponential backoff while it reports
// ErrNotIngested.
func fetchWithRetry(ctx context.Context, cfg RetryConfig, f Fetcher, tc Configuration) ([]spancache.SpanRecord, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		recs, err := f.FetchSpans(ctx, tc)
		if err == nil {
			return recs, nil
		}
		lastErr = err
		if !errors.Is(err, ErrNotIngested) {
			return nil, fmt.Errorf("fetching spans for root %s: %w", tc.RootSpanID, err)
		}
		if attempt >= cfg.MaxRetries {
			break
		}

		backoff := backoffFor(cfg, attempt)

		var jitter time.Duration
		if cfg.MaxJitter > 0 {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(cfg.MaxJitter)))
			if err == nil {
				jitter = time.Duration(n.Int64())
			}
		}

		clog.FromContext(ctx).With("root_span_id", tc.RootSpanID).
			With("attempt", attempt+1).
			With("backoff", backoff+jitter).
			Debugf("Spans not ingested yet, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff + jitter):
		}
	}

	return nil, fmt.Errorf("fetching spans for root %s failed after %d retries: %w", tc.RootSpanID, cfg.MaxRetries, lastErr)
}
