package display

import (
	"image/color"
	"testing"
)

func TestMeasureString(t *testing.T) {
	if got := MeasureString(""); got != 0 {
		t.Errorf("MeasureString(\"\") = %d, want 0", got)
	}

	one := MeasureString("A")
	if one <= 0 {
		t.Fatalf("MeasureString(\"A\") = %d, want > 0", one)
	}

	// Fixed-width face: width grows linearly with rune count
	if got := MeasureString("AAAA"); got != 4*one {
		t.Errorf("MeasureString(\"AAAA\") = %d, want %d", got, 4*one)
	}
}

func TestLineHeight(t *testing.T) {
	if got := LineHeight(); got <= 0 {
		t.Errorf("LineHeight() = %d, want > 0", got)
	}
}

func TestDrawOutlinedString(t *testing.T) {
	fb, err := NewFramebuffer(64, 32)
	if err != nil {
		t.Fatalf("NewFramebuffer() error = %v", err)
	}

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black := color.RGBA{A: 255}

	DrawOutlinedString(fb, "Hi", 2, 2, white, black)
	if err := fb.Show(); err != nil {
		t.Fatalf("Show() error = %v", err)
	}

	snap := fb.Snapshot()
	var lit, outlined int
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			c := snap.RGBAAt(x, y)
			if c.A == 0 {
				continue
			}
			if c.R == 255 {
				lit++
			} else {
				outlined++
			}
		}
	}

	if lit == 0 {
		t.Error("no foreground pixels drawn")
	}
	if outlined == 0 {
		t.Error("no outline pixels drawn")
	}
}

func TestDrawOutlinedString_OffscreenDoesNotPanic(t *testing.T) {
	fb, err := NewFramebuffer(16, 8)
	if err != nil {
		t.Fatalf("NewFramebuffer() error = %v", err)
	}

	// Entirely off-screen positions, as scrolling constantly produces
	DrawOutlinedString(fb, "scrolling text", -500, 0, color.White, color.Black)
	DrawOutlinedString(fb, "scrolling text", 500, 0, color.White, color.Black)
	DrawOutlinedString(fb, "", 0, 0, color.White, color.Black)
}
