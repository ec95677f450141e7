/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package exporter sends finished spans to their destination.
//
// Spans carry their destination in the evaltrace.parent attribute. The
// Exporter splits each batch by destination and hands every group to the
// next exporter separately, with the destination published in a shared
// State for the duration of that send. A Transport reads the State and adds
// it to outgoing HTTP requests, so an OTLP/HTTP exporter built by NewOTLP
// tags every request with the destination of the spans it carries.
//
//	exp, err := exporter.NewOTLP(ctx, "collector:4318", false)
//	if err != nil {
//		return err
//	}
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
//	defer tp.Shutdown(ctx)
package exporter
