/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package exporter

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestTransportInjectsHeaders(t *testing.T) {
	var (
		mu  sync.Mutex
		got []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, r.Header.Get(ParentHeader))
	}))
	defer srv.Close()

	state := NewState()
	client := &http.Client{Transport: &Transport{State: state}}

	state.Set(ParentHeader, "experiment_id:1")
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	state.Delete(ParentHeader)
	resp, err = client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]string{"experiment_id:1", ""}, got); diff != "" {
		t.Errorf("headers (-want +got):\n%s", diff)
	}
}

func TestTransportDoesNotModifyRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	state := NewState()
	state.Set(ParentHeader, "experiment_id:1")
	tr := &Transport{State: state}

	req := httptest.NewRequest(http.MethodGet, srv.URL, nil)
	req.RequestURI = ""
	resp, err := tr.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	resp.Body.Close()

	if v := req.Header.Get(ParentHeader); v != "" {
		t.Errorf("caller request header: got = %q, wanted = empty", v)
	}
}

func TestNewOTLPTagsRequests(t *testing.T) {
	var (
		mu  sync.Mutex
		got []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		mu.Lock()
		got = append(got, r.Header.Get(ParentHeader))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/x-protobuf")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exp, err := NewOTLP(ctx, srv.Listener.Addr().String(), true)
	if err != nil {
		t.Fatalf("NewOTLP: %v", err)
	}
	defer exp.Shutdown(ctx)

	if err := exp.ExportSpans(ctx, spans(
		stub("a", "experiment_id:a"),
		stub("b", "experiment_id:b"),
	)); err != nil {
		t.Fatalf("ExportSpans: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]string{"experiment_id:a", "experiment_id:b"}, got); diff != "" {
		t.Errorf("request headers (-want +got):\n%s", diff)
	}
}
