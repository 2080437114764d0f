package marquee

import "image/color"

// Brightness bounds. Values outside are clamped, never rejected: a bad
// manual input must not halt the display.
const (
	MinBrightness = 0
	MaxBrightness = 100
)

// Reference colors at full brightness. The palette scales these; drawing
// code never touches them directly.
var (
	refBlack  = color.RGBA{A: 255}
	refWhite  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	refRed    = color.RGBA{R: 255, A: 255}
	refGreen  = color.RGBA{G: 255, A: 255}
	refBlue   = color.RGBA{B: 255, A: 255}
	refYellow = color.RGBA{R: 255, G: 255, A: 255}
	refOrange = color.RGBA{R: 255, G: 165, A: 255}
)

// Palette is the active color set, scaled from the reference colors by the
// current brightness. It is rebuilt whenever brightness changes and is
// immutable afterwards, so the renderer can hold it without locking.
type Palette struct {
	// Level is the clamped brightness this palette was built from.
	Level int

	Black  color.RGBA
	White  color.RGBA
	Red    color.RGBA
	Green  color.RGBA
	Blue   color.RGBA
	Yellow color.RGBA
	Orange color.RGBA
}

// ClampBrightness clamps a brightness level into [MinBrightness, MaxBrightness].
func ClampBrightness(level int) int {
	if level < MinBrightness {
		return MinBrightness
	}
	if level > MaxBrightness {
		return MaxBrightness
	}
	return level
}

// NewPalette builds the active palette for a brightness level.
//
// Scaling is linear per channel, so the palette is monotonically
// non-decreasing in the clamped level: raising brightness never dims any
// color, and level 0 yields an entirely unlit palette.
func NewPalette(level int) Palette {
	level = ClampBrightness(level)
	return Palette{
		Level:  level,
		Black:  scaleColor(refBlack, level),
		White:  scaleColor(refWhite, level),
		Red:    scaleColor(refRed, level),
		Green:  scaleColor(refGreen, level),
		Blue:   scaleColor(refBlue, level),
		Yellow: scaleColor(refYellow, level),
		Orange: scaleColor(refOrange, level),
	}
}

// BackgroundFor returns the background color for a message tone.
func (p Palette) BackgroundFor(tone Tone) color.RGBA {
	switch tone {
	case ToneTime:
		return p.Yellow
	case ToneNews:
		return p.Red
	case ToneWeather:
		return p.Blue
	case ToneAir:
		return p.Green
	default:
		return p.Blue
	}
}

// scaleColor scales the RGB channels of c by level/100. Alpha is left
// opaque: an "off" pixel is black, not transparent.
func scaleColor(c color.RGBA, level int) color.RGBA {
	return color.RGBA{
		R: uint8(int(c.R) * level / MaxBrightness),
		G: uint8(int(c.G) * level / MaxBrightness),
		B: uint8(int(c.B) * level / MaxBrightness),
		A: c.A,
	}
}
