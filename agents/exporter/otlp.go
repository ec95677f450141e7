/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package exporter

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
)

// NewOTLP returns an Exporter sending to an OTLP/HTTP collector at endpoint
// (host:port). Each request carries the destination of its spans in
// ParentHeader.
func NewOTLP(ctx context.Context, endpoint string, insecure bool, opts ...otlptracehttp.Option) (*Exporter, error) {
	state := NewState()
	client := &http.Client{Transport: &Transport{State: state}}

	o := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithHTTPClient(client),
	}
	if insecure {
		o = append(o, otlptracehttp.WithInsecure())
	}
	next, err := otlptracehttp.New(ctx, append(o, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("exporter: create otlp exporter: %w", err)
	}
	return New(next, state), nil
}
