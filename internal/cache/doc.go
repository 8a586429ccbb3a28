// Package cache provides a small generic LRU cache for derived geometry.
//
// The brush engine keys precomputed disc spans by radius: brush sizes change
// rarely compared to how often stamps are placed, so a handful of entries
// covers a whole editing session.
//
//	c := cache.New[int, []int](32)
//	spans := c.GetOrCreate(radius, func() []int { return discSpans(radius) })
//
// Cache is safe for concurrent use; background executors stamp from
// several goroutines at once. It must not be copied after creation.
package cache
