// Package brush implements the pixel algorithm behind mask painting.
//
// A mask is a []byte of width*height bytes, index y*width+x, in which every
// byte is exactly 0 (excluded) or 255 (included). Stamps are circular and
// binary: stamp centres are rounded to whole pixels and a pixel is covered
// when its integer squared distance to the centre is at most radius², with
// radius = size/2. There is no sub-pixel blending, so stamping is
// reproducible and idempotent, and the binary invariant holds without any
// clamping afterwards.
//
// Strokes are stamped along their path at a fixed arc-length spacing,
// expressed as a fraction of the brush size:
//
//	changed, bounds := brush.ApplyStrokePath(mask, w, h, points, 24, brush.Paint, brush.DefaultSpacing)
//
// The same walk is available incrementally through Stroker, which live
// pointer strokes use so that replaying a recorded stroke reproduces the
// exact pixels painted while the user was drawing.
package brush
