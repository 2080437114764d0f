// Package display provides the drawing surface for the marquee.
//
// The scroll renderer draws frames through the Matrix interface; the
// Framebuffer implementation composites in memory and double-buffers so
// the HUB75 scanner (internal/display/hub75) and the HTTP preview can
// read published frames concurrently.
//
// Text is rendered with the fixed 7x13 bitmap face from
// golang.org/x/image/font/basicfont, with a 1-pixel outline so white
// text stays readable over colored backgrounds.
package display
