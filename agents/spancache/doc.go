/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package spancache provides an in-process store of span payloads grouped by trace root.

# Overview

Scorers frequently need to look at spans emitted earlier in the same trace, such as
the nested model calls a task made. Rather than querying the tracing backend, the
runner and the task mirror span payloads into a Cache, and scorers read them back
through a tracecontext.TraceContext.

  - Cache: a bounded, expiring, goroutine-safe store keyed by root span ID
  - Fields: a partial update merged into an existing span record
  - Register / Current / Unregister: context-scoped association of a Cache

# Lifecycle

A Cache is constructed disabled. Start clears it and enables writes and reads,
Stop disables and clears it, and Disable turns it off while leaving existing
entries in place until the next Start or Clear.

	cache := spancache.New(spancache.WithTTL(10*time.Minute), spancache.WithMaxEntries(64))
	cache.Start()
	defer cache.Stop()

	ctx = spancache.Register(ctx, cache)
	spancache.Current(ctx).Write(rootID, spanID, spancache.Fields{
		"output": "hello",
	})

# Merge Semantics

Writing to an existing (root, span) pair merges fields: non-nil incoming values
replace existing values of the same name, and nil values are ignored. Writing
{"a": nil} therefore never erases "a".

# Expiry and Eviction

Entries expire when the time since their last write exceeds the TTL. Expiry is
checked lazily when an entry is read. When a write would add a root beyond the
configured maximum, the least recently touched root (by read or write) is
evicted first.
*/
package spancache
