package display

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// face is the bitmap face used for all marquee text. 7x13 is the largest
// fixed face that gives two readable lines on a 32-pixel panel.
var face = basicfont.Face7x13

// outlineOffsets are the four cardinal offsets drawn in the outline color
// before the foreground pass, giving text a 1-pixel halo that keeps it
// readable over a lit background.
var outlineOffsets = [4]image.Point{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// MeasureString returns the rendered width of s in pixels.
func MeasureString(s string) int {
	return font.MeasureString(face, s).Ceil()
}

// LineHeight returns the vertical pixel distance between stacked lines.
func LineHeight() int {
	return face.Metrics().Height.Ceil()
}

// DrawOutlinedString draws s onto m with its top-left corner at (x, y),
// outlined in outline and filled in fg. Pixels outside m's bounds are
// clipped by the Matrix contract.
func DrawOutlinedString(m Matrix, s string, x, y int, fg, outline color.Color) {
	if s == "" {
		return
	}

	width := MeasureString(s)
	height := LineHeight()
	if width <= 0 {
		return
	}

	// Render the outline and foreground passes into a scratch image,
	// padded one pixel on every side for the halo.
	scratch := image.NewRGBA(image.Rect(0, 0, width+2, height+2))
	for _, off := range outlineOffsets {
		drawString(scratch, s, 1+off.X, 1+off.Y, outline)
	}
	drawString(scratch, s, 1, 1, fg)

	// Blit opaque pixels through the Matrix boundary.
	bounds := scratch.Bounds()
	for sy := bounds.Min.Y; sy < bounds.Max.Y; sy++ {
		for sx := bounds.Min.X; sx < bounds.Max.X; sx++ {
			c := scratch.RGBAAt(sx, sy)
			if c.A == 0 {
				continue
			}
			m.SetPixel(x+sx-1, y+sy-1, c)
		}
	}
}

// drawString renders s into dst with its top-left corner at (x, y).
func drawString(dst draw.Image, s string, x, y int, c color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(x),
			Y: fixed.I(y + face.Metrics().Ascent.Ceil()),
		},
	}
	d.DrawString(s)
}
