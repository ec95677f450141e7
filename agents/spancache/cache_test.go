/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package spancache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// fakeClock is a manually advanced time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func startedCache(opts ...Option) *Cache {
	c := New(opts...)
	c.Start()
	return c
}

func TestWriteMergesFields(t *testing.T) {
	c := startedCache()

	c.Write("root", "span", Fields{"a": 1})
	c.Write("root", "span", Fields{"b": 2})
	c.Write("root", "span", Fields{"a": nil})

	got := c.Get("root")
	if len(got) != 1 {
		t.Fatalf("span count: got = %d, wanted = 1", len(got))
	}
	want := map[string]any{"a": 1, "b": 2}
	if diff := cmp.Diff(want, got[0].Fields); diff != "" {
		t.Errorf("merged fields (-want +got):\n%s", diff)
	}
}

func TestWriteOverwritesNonNil(t *testing.T) {
	c := startedCache()

	c.Write("root", "span", Fields{"output": "first", "input": "q"})
	c.Write("root", "span", Fields{"output": "second"})

	got := c.Get("root")[0].Fields
	if got["output"] != "second" {
		t.Errorf("output: got = %v, wanted = second", got["output"])
	}
	if got["input"] != "q" {
		t.Errorf("input: got = %v, wanted = q", got["input"])
	}
}

func TestGetPreservesWriteOrder(t *testing.T) {
	c := startedCache()

	for _, id := range []string{"s3", "s1", "s2"} {
		c.Write("root", id, Fields{"id": id})
	}
	// Rewriting an existing span does not move it.
	c.Write("root", "s3", Fields{"extra": true})

	var ids []string
	for _, rec := range c.Get("root") {
		ids = append(ids, rec.SpanID)
	}
	if diff := cmp.Diff([]string{"s3", "s1", "s2"}, ids); diff != "" {
		t.Errorf("span order (-want +got):\n%s", diff)
	}
}

func TestGetReturnsCopies(t *testing.T) {
	c := startedCache()
	c.Write("root", "span", Fields{"a": 1})

	got := c.Get("root")
	got[0].Fields["a"] = 99

	if v := c.Get("root")[0].Fields["a"]; v != 1 {
		t.Errorf("stored field after caller mutation: got = %v, wanted = 1", v)
	}
}

func TestDisabledCache(t *testing.T) {
	c := New()

	c.Write("root", "span", Fields{"a": 1})
	if got := c.Get("root"); got != nil {
		t.Errorf("get before start: got = %v, wanted = nil", got)
	}
	if c.Size() != 0 {
		t.Errorf("size before start: got = %d, wanted = 0", c.Size())
	}
	if c.Enabled() {
		t.Error("enabled before start: got = true, wanted = false")
	}
}

func TestLifecycle(t *testing.T) {
	c := startedCache()
	c.Write("root", "span", Fields{"a": 1})

	c.Disable()
	if c.Has("root") {
		t.Error("has after disable: got = true, wanted = false")
	}
	if c.Size() != 0 {
		t.Errorf("size after disable: got = %d, wanted = 0", c.Size())
	}

	// Entries are kept while disabled, but Start clears them.
	c.Start()
	if c.Has("root") {
		t.Error("has after restart: got = true, wanted = false")
	}

	c.Write("root", "span", Fields{"a": 1})
	c.Stop()
	if c.Enabled() {
		t.Error("enabled after stop: got = true, wanted = false")
	}
	c.Start()
	if c.Size() != 0 {
		t.Errorf("size after stop/start: got = %d, wanted = 0", c.Size())
	}
}

func TestTTLExpiry(t *testing.T) {
	c := startedCache(WithTTL(100 * time.Millisecond))

	c.Write("root", "span", Fields{"a": 1})
	time.Sleep(150 * time.Millisecond)

	if got := c.Get("root"); got != nil {
		t.Errorf("get after ttl: got = %v, wanted = nil", got)
	}
	if c.Size() != 0 {
		t.Errorf("size after ttl: got = %d, wanted = 0", c.Size())
	}
}

func TestTTLMeasuredFromLastWrite(t *testing.T) {
	clock := newFakeClock()
	c := startedCache(WithTTL(time.Minute), WithClock(clock.Now))

	c.Write("root", "span", Fields{"a": 1})
	clock.Advance(45 * time.Second)

	// Reads do not extend the lifetime.
	if !c.Has("root") {
		t.Fatal("has before ttl: got = false, wanted = true")
	}
	clock.Advance(30 * time.Second)
	if c.Has("root") {
		t.Error("has after ttl despite read: got = true, wanted = false")
	}

	c.Write("root", "span", Fields{"a": 2})
	clock.Advance(45 * time.Second)
	c.Write("root", "other", Fields{"b": 1})
	clock.Advance(45 * time.Second)
	if !c.Has("root") {
		t.Error("has after refreshing write: got = false, wanted = true")
	}
}

func TestExpiredRootIsRecreatedOnWrite(t *testing.T) {
	clock := newFakeClock()
	c := startedCache(WithTTL(time.Minute), WithClock(clock.Now))

	c.Write("root", "old", Fields{"a": 1})
	clock.Advance(2 * time.Minute)
	c.Write("root", "new", Fields{"b": 1})

	got := c.Get("root")
	if len(got) != 1 || got[0].SpanID != "new" {
		t.Errorf("spans after expiry and rewrite: got = %v, wanted = [new]", got)
	}
}

func TestLRUEviction(t *testing.T) {
	clock := newFakeClock()
	c := startedCache(WithMaxEntries(2), WithClock(clock.Now))

	c.Write("first", "s", Fields{"n": 1})
	clock.Advance(time.Second)
	c.Write("second", "s", Fields{"n": 2})
	clock.Advance(time.Second)

	// Touch the first root so the second becomes least recently used.
	if c.Get("first") == nil {
		t.Fatal("get first: got = nil, wanted = spans")
	}
	clock.Advance(time.Second)
	c.Write("third", "s", Fields{"n": 3})

	if !c.Has("first") {
		t.Error("has first: got = false, wanted = true")
	}
	if c.Has("second") {
		t.Error("has second: got = true, wanted = false (evicted)")
	}
	if !c.Has("third") {
		t.Error("has third: got = false, wanted = true")
	}
	if c.Size() != 2 {
		t.Errorf("size: got = %d, wanted = 2", c.Size())
	}
}

func TestWriteToExistingRootDoesNotEvict(t *testing.T) {
	c := startedCache(WithMaxEntries(1))

	c.Write("root", "a", Fields{"n": 1})
	c.Write("root", "b", Fields{"n": 2})

	if got := len(c.Get("root")); got != 2 {
		t.Errorf("span count: got = %d, wanted = 2", got)
	}
}

func TestClear(t *testing.T) {
	c := startedCache()
	for _, root := range []string{"a", "b", "c"} {
		c.Write(root, "s", Fields{"root": root})
	}

	c.Clear("b")
	if c.Has("b") {
		t.Error("has b after clear: got = true, wanted = false")
	}
	if c.Size() != 2 {
		t.Errorf("size after single clear: got = %d, wanted = 2", c.Size())
	}

	c.Clear()
	if c.Size() != 0 {
		t.Errorf("size after full clear: got = %d, wanted = 0", c.Size())
	}
}

func TestConcurrentDisjointWrites(t *testing.T) {
	const n = 50
	c := startedCache(WithMaxEntries(n))

	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		go func() {
			defer wg.Done()
			c.Write(fmt.Sprintf("root-%d", i), "span", Fields{"i": i})
		}()
	}
	wg.Wait()

	if c.Size() != n {
		t.Errorf("size: got = %d, wanted = %d", c.Size(), n)
	}
	for i := range n {
		got := c.Get(fmt.Sprintf("root-%d", i))
		if len(got) != 1 || got[0].Fields["i"] != i {
			t.Errorf("root-%d: got = %v, wanted = one span with i=%d", i, got, i)
		}
	}
}

func TestConcurrentSameSpanWrites(t *testing.T) {
	const n = 50
	c := startedCache()

	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		go func() {
			defer wg.Done()
			c.Write("root", "span", Fields{fmt.Sprintf("field-%d", i): i})
		}()
	}
	wg.Wait()

	got := c.Get("root")
	if len(got) != 1 {
		t.Fatalf("span count: got = %d, wanted = 1", len(got))
	}
	if len(got[0].Fields) != n {
		t.Errorf("field count: got = %d, wanted = %d", len(got[0].Fields), n)
	}
}

func TestGetCopiesNestedValues(t *testing.T) {
	c := startedCache()
	attrs := map[string]any{"type": "task", "tags": []any{"x"}}
	c.Write("root", "span", Fields{"span_attributes": attrs})

	// Neither the writer's map nor a reader's copy reaches the cache.
	attrs["type"] = "writer"
	got := c.Get("root")
	nested := got[0].Fields["span_attributes"].(map[string]any)
	nested["type"] = "reader"
	nested["tags"].([]any)[0] = "y"

	want := map[string]any{"type": "task", "tags": []any{"x"}}
	if diff := cmp.Diff(want, c.Get("root")[0].Fields["span_attributes"]); diff != "" {
		t.Errorf("stored span_attributes (-want +got):\n%s", diff)
	}
}
