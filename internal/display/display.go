package display

import (
	"image"
	"image/color"
)

// Matrix is the drawing surface the scroll renderer targets.
//
// Implementations: Framebuffer (in-memory, also the compositor for the
// hardware drivers and the HTTP preview). The renderer draws a full frame
// with SetPixel/Fill, then calls Show to publish it.
type Matrix interface {
	// Bounds returns the pixel geometry of the display.
	Bounds() image.Rectangle

	// SetPixel sets a single pixel. Coordinates outside Bounds are
	// silently clipped: scrolling text spends most of its life partly
	// off-screen and that must never be an error.
	SetPixel(x, y int, c color.Color)

	// Fill sets every pixel to c.
	Fill(c color.Color)

	// Show publishes the frame drawn since the last Show.
	Show() error

	// Close releases the display.
	Close() error
}
