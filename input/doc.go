// Package input normalises raw pointer events into drawing gestures.
//
// An Engine consumes RawEvent values from the host (mouse, pen and touch
// alike) and emits Start, Move, End and Cancel events to a single handler.
// Only the primary pointer starts a gesture; once started, the gesture's
// pointer is captured and owns every subsequent move and end event, even
// outside the element. Per-pointer state lives in a Session that the host
// creates and passes to the engine.
//
// Moves with no gesture in progress are reported through OnHover so the
// host can draw a brush cursor preview.
package input
