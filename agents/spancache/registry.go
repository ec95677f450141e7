/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package spancache

import "context"

// cacheKey is the context key for the registered Cache
type cacheKey struct{}

// Register returns a context associated with cache. Registering again on the
// returned context (or a child of it) replaces the association.
func Register(ctx context.Context, cache *Cache) context.Context {
	return context.WithValue(ctx, cacheKey{}, cache)
}

// Current returns the Cache registered on ctx, or nil if none is.
func Current(ctx context.Context) *Cache {
	if cache, ok := ctx.Value(cacheKey{}).(*Cache); ok {
		return cache
	}
	return nil
}

// Unregister returns a context on which Current reports nil, masking any
// registration inherited from ctx.
func Unregister(ctx context.Context) context.Context {
	return context.WithValue(ctx, cacheKey{}, (*Cache)(nil))
}
