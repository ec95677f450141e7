/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package spancache

import (
	"container/list"
	"slices"
	"sync"
	"time"
)

const (
	// DefaultTTL is how long a root survives after its last write.
	DefaultTTL = time.Hour
	// DefaultMaxEntries bounds the number of roots held at once.
	DefaultMaxEntries = 128
)

// Fields is a partial update for a span record. A nil value means the field
// was not provided and leaves any existing value in place.
type Fields map[string]any

// SpanRecord is the cached payload of a single span.
type SpanRecord struct {
	RootID        string         `json:"root_id"`
	SpanID        string         `json:"span_id"`
	Fields        map[string]any `json:"fields"`
	LastWrittenAt time.Time      `json:"last_written_at"`
}

// entry holds all spans recorded under one root.
type entry struct {
	rootID        string
	spans         map[string]*SpanRecord
	order         []string
	lastTouchedAt time.Time
	lastWrittenAt time.Time
	elem          *list.Element // position in Cache.lru, front is most recent
}

// Cache is a goroutine-safe store of span records keyed by root span ID.
// The zero value is not usable; construct with New.
type Cache struct {
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	enabled bool
	roots   map[string]*entry
	lru     *list.List
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets how long a root stays readable after its last write.
// Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaxEntries bounds the number of roots. Non-positive values are ignored.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a disabled Cache. Call Start before use.
func New(opts ...Option) *Cache {
	c := &Cache{
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
		roots:      make(map[string]*entry),
		lru:        list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration { return c.ttl }

// MaxEntries returns the configured root limit.
func (c *Cache) MaxEntries() int { return c.maxEntries }

// Start clears all entries and enables the cache.
func (c *Cache) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
	c.enabled = true
}

// Stop disables the cache and frees all entries.
func (c *Cache) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = false
	c.clearLocked()
}

// Disable turns the cache off without freeing entries. They stay unreadable
// until the next Start or Clear releases them.
func (c *Cache) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = false
}

// Enabled reports whether the cache accepts reads and writes.
func (c *Cache) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Write merges fields into the record for (rootID, spanID), creating the root
// and the record as needed. It is a no-op while the cache is disabled.
func (c *Cache) Write(rootID, spanID string, fields Fields) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return
	}
	now := c.now()

	e, ok := c.roots[rootID]
	if ok && c.expiredLocked(e, now) {
		c.removeLocked(e, evictionTTL)
		ok = false
	}
	if !ok {
		c.makeRoomLocked(now)
		e = &entry{
			rootID: rootID,
			spans:  make(map[string]*SpanRecord),
		}
		e.elem = c.lru.PushFront(e)
		c.roots[rootID] = e
		rootsGauge.Inc()
	}

	rec, ok := e.spans[spanID]
	if !ok {
		rec = &SpanRecord{
			RootID: rootID,
			SpanID: spanID,
			Fields: make(map[string]any, len(fields)),
		}
		e.spans[spanID] = rec
		e.order = append(e.order, spanID)
	}
	for k, v := range fields {
		if v == nil {
			continue
		}
		rec.Fields[k] = cloneValue(v)
	}
	rec.LastWrittenAt = now
	e.lastWrittenAt = now
	c.touchLocked(e, now)
}

// Get returns copies of the spans recorded under rootID in write order, or nil
// if the cache is disabled, the root is unknown, or it has expired. Expired
// roots are removed as a side effect. Nested maps and slices are copied too;
// other values, such as structs behind pointers, are shared with the cache.
func (c *Cache) Get(rootID string) []SpanRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.liveLocked(rootID)
	if e == nil {
		cacheMisses.Inc()
		return nil
	}
	cacheHits.Inc()
	c.touchLocked(e, c.now())

	out := make([]SpanRecord, 0, len(e.order))
	for _, id := range e.order {
		rec := e.spans[id]
		out = append(out, SpanRecord{
			RootID:        rec.RootID,
			SpanID:        rec.SpanID,
			Fields:        cloneFields(rec.Fields),
			LastWrittenAt: rec.LastWrittenAt,
		})
	}
	return out
}

// Has reports whether rootID has a live entry. Like Get, it counts as a touch.
func (c *Cache) Has(rootID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.liveLocked(rootID)
	if e == nil {
		return false
	}
	c.touchLocked(e, c.now())
	return true
}

// Size returns the number of live roots. A disabled cache reports 0.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return 0
	}
	now := c.now()
	n := 0
	for _, e := range c.roots {
		if !c.expiredLocked(e, now) {
			n++
		}
	}
	return n
}

// Clear removes the given roots, or every root when called without arguments.
func (c *Cache) Clear(rootIDs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(rootIDs) == 0 {
		c.clearLocked()
		return
	}
	for _, id := range rootIDs {
		if e, ok := c.roots[id]; ok {
			c.removeLocked(e, "")
		}
	}
}

// liveLocked returns the entry for rootID if the cache is enabled and the entry
// has not expired, dropping it if it has.
func (c *Cache) liveLocked(rootID string) *entry {
	if !c.enabled {
		return nil
	}
	e, ok := c.roots[rootID]
	if !ok {
		return nil
	}
	if c.expiredLocked(e, c.now()) {
		c.removeLocked(e, evictionTTL)
		return nil
	}
	return e
}

func (c *Cache) expiredLocked(e *entry, now time.Time) bool {
	return now.Sub(e.lastWrittenAt) > c.ttl
}

func (c *Cache) touchLocked(e *entry, now time.Time) {
	e.lastTouchedAt = now
	c.lru.MoveToFront(e.elem)
}

// makeRoomLocked evicts the least recently touched root while a new root would
// not fit.
func (c *Cache) makeRoomLocked(now time.Time) {
	for len(c.roots) >= c.maxEntries {
		back := c.lru.Back()
		if back == nil {
			return
		}
		e := back.Value.(*entry)
		reason := evictionLRU
		if c.expiredLocked(e, now) {
			reason = evictionTTL
		}
		c.removeLocked(e, reason)
	}
}

// removeLocked drops e and records an eviction when reason is non-empty.
func (c *Cache) removeLocked(e *entry, reason string) {
	c.lru.Remove(e.elem)
	delete(c.roots, e.rootID)
	rootsGauge.Dec()
	if reason != "" {
		cacheEvictions.WithLabelValues(reason).Inc()
	}
}

func (c *Cache) clearLocked() {
	rootsGauge.Sub(float64(len(c.roots)))
	c.roots = make(map[string]*entry)
	c.lru.Init()
}

func cloneFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue copies the map and slice shapes produced by JSON-like payloads.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneFields(t)
	case Fields:
		return Fields(cloneFields(t))
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, item := range t {
			out[i] = cloneFields(item)
		}
		return out
	case []string:
		return slices.Clone(t)
	default:
		return v
	}
}
