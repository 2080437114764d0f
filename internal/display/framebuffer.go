package display

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
)

// Framebuffer is an in-memory Matrix implementation.
//
// It double-buffers: SetPixel/Fill mutate a back buffer owned by the
// render goroutine, Show copies it to a front buffer that other
// goroutines (the HUB75 scanner, the HTTP preview) read via Snapshot.
//
// Thread Safety:
//   - SetPixel/Fill/Show must be called from a single goroutine (the renderer).
//   - Snapshot is safe for concurrent use from multiple goroutines.
type Framebuffer struct {
	back  *image.RGBA
	front *image.RGBA
	mu    sync.RWMutex
}

// NewFramebuffer creates a framebuffer with the given geometry.
func NewFramebuffer(width, height int) (*Framebuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("display: invalid dimensions %dx%d", width, height)
	}
	rect := image.Rect(0, 0, width, height)
	return &Framebuffer{
		back:  image.NewRGBA(rect),
		front: image.NewRGBA(rect),
	}, nil
}

// Bounds returns the pixel geometry of the display.
func (f *Framebuffer) Bounds() image.Rectangle {
	return f.back.Bounds()
}

// SetPixel sets a single pixel on the back buffer, clipping out-of-bounds
// coordinates.
func (f *Framebuffer) SetPixel(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(f.back.Bounds()) {
		return
	}
	f.back.Set(x, y, c)
}

// Fill sets every back-buffer pixel to c.
func (f *Framebuffer) Fill(c color.Color) {
	draw.Draw(f.back, f.back.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Show publishes the back buffer to the front buffer.
func (f *Framebuffer) Show() error {
	f.mu.Lock()
	copy(f.front.Pix, f.back.Pix)
	f.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the last published frame.
func (f *Framebuffer) Snapshot() *image.RGBA {
	f.mu.RLock()
	defer f.mu.RUnlock()

	snap := image.NewRGBA(f.front.Bounds())
	copy(snap.Pix, f.front.Pix)
	return snap
}

// CopyTo copies the last published frame into dst, which must have the
// same geometry. Used by the HUB75 scanner to avoid per-refresh allocation.
func (f *Framebuffer) CopyTo(dst *image.RGBA) {
	f.mu.RLock()
	copy(dst.Pix, f.front.Pix)
	f.mu.RUnlock()
}

// Close releases the framebuffer. It is a no-op for the in-memory surface.
func (f *Framebuffer) Close() error {
	return nil
}
