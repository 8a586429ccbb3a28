// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package worker runs pixel-heavy mask operations either on a background
// goroutine pool or synchronously on the caller's goroutine.
//
// Both strategies implement Executor and produce byte-identical results.
// Requests are copied on the way in and results are fresh buffers, so a
// failing background job can never corrupt the caller's live mask.
//
// Manager selects the strategy once: it probes the background executor
// with Ping under a timeout and, if the probe fails, uses the synchronous
// executor for the rest of the session. A background call that fails
// later falls back to the synchronous executor for that call; repeated
// failures disable background dispatch.
//
//	m := worker.NewManager(ctx)
//	defer m.Close()
//	res, err := m.ProcessStroke(ctx, worker.StrokeRequest{...})
package worker
