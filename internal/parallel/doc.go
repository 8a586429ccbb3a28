// Package parallel provides the goroutine infrastructure behind the
// background executor: a work-stealing worker pool and a lock-free tile
// bitmap used to scan mask occupancy in parallel.
//
// Thread safety: WorkerPool and TileBitmap are safe for concurrent use.
package parallel
