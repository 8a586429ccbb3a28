// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package view maps between view (screen) coordinates and image pixels and
// runs the zoom/pan gesture state machine that produces the mapping.
//
// # Coordinate model
//
// The image is drawn centred in the view at an effective scale of
// BaseScale*Scale, where BaseScale is the "contain" fit computed from the
// image and view sizes and Scale is the user zoom. TranslateX/TranslateY
// shift the drawing in view pixels:
//
//	screen = (pixel - imageSize/2) * BaseScale*Scale + translate + viewSize/2 + origin
//
// Transform.ScreenToImage applies the exact inverse and floors to a pixel.
//
// # Gestures
//
// Controller turns pointer and wheel input into ViewTransform updates:
// two-pointer pinch zooms about the centroid, two-pointer drag and
// single-pointer drag during an active gesture pan, and the wheel zooms
// toward the cursor. Translation is clamped after every change.
package view
