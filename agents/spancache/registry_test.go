/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package spancache

import (
	"context"
	"sync"
	"testing"
)

func TestRegistryUnregisteredIsNil(t *testing.T) {
	if got := Current(context.Background()); got != nil {
		t.Errorf("current on fresh context: got = %v, wanted = nil", got)
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	cache := New()
	ctx := Register(context.Background(), cache)

	if got := Current(ctx); got != cache {
		t.Errorf("current: got = %p, wanted = %p", got, cache)
	}

	ctx = Unregister(ctx)
	if got := Current(ctx); got != nil {
		t.Errorf("current after unregister: got = %p, wanted = nil", got)
	}
}

func TestRegistryReRegisterOverwrites(t *testing.T) {
	first, second := New(), New()

	ctx := Register(context.Background(), first)
	ctx = Register(ctx, second)

	if got := Current(ctx); got != second {
		t.Errorf("current after re-register: got = %p, wanted = %p", got, second)
	}
}

func TestRegistryIsolatedFromSiblingGoroutine(t *testing.T) {
	parent := Register(context.Background(), New())
	if Current(parent) == nil {
		t.Fatal("current in registering goroutine: got = nil, wanted = cache")
	}

	var (
		wg      sync.WaitGroup
		sibling *Cache
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		// A freshly started goroutine begins from its own root context.
		sibling = Current(context.Background())
	}()
	wg.Wait()

	if sibling != nil {
		t.Errorf("current in sibling goroutine: got = %p, wanted = nil", sibling)
	}
}

func TestRegistryConcurrentRunsIsolated(t *testing.T) {
	const runs = 8
	caches := make([]*Cache, runs)
	seen := make([]*Cache, runs)

	var wg sync.WaitGroup
	wg.Add(runs)
	for i := range runs {
		caches[i] = New()
		go func() {
			defer wg.Done()
			ctx := Register(context.Background(), caches[i])
			seen[i] = Current(ctx)
		}()
	}
	wg.Wait()

	for i := range runs {
		if seen[i] != caches[i] {
			t.Errorf("run %d: got = %p, wanted = %p", i, seen[i], caches[i])
		}
	}
}
