// Package cache provides the generation-stamped caches behind the query layer.
//
// Every write carries the generation observed before the underlying read.
// InvalidateAll bumps the generation, so a value computed from data read
// before an invalidation can never be stored after it.
package cache

import "context"

// Store is a keyed cache of V values. Values handed out by Get must be
// treated as read-only.
type Store[V any] interface {
	// Name identifies the cache in logs and metrics.
	Name() string

	// Generation returns the current generation. Capture it before reading
	// the data that will be passed to Set.
	Generation(ctx context.Context) uint64

	Get(ctx context.Context, key string) (V, bool)

	// Set stores value only if generation is still current.
	Set(ctx context.Context, generation uint64, key string, value V)

	// InvalidateAll drops every entry and advances the generation.
	InvalidateAll(ctx context.Context)
}
