package marquee

import (
	"testing"
	"time"

	"github.com/nerrad567/marquee/internal/display"
	"github.com/nerrad567/marquee/internal/infrastructure/config"
)

func testRenderer(t *testing.T, cfg config.ScrollConfig) (*Renderer, *display.Framebuffer) {
	t.Helper()
	fb, err := display.NewFramebuffer(64, 32)
	if err != nil {
		t.Fatalf("NewFramebuffer() error = %v", err)
	}
	return NewRenderer(fb, cfg, NewPalette(100)), fb
}

func mustMessage(t *testing.T, text string) Message {
	t.Helper()
	msg, err := BuildMessage(text, 0)
	if err != nil {
		t.Fatalf("BuildMessage(%q) error = %v", text, err)
	}
	return msg
}

func TestSetMessageResetsOffset(t *testing.T) {
	r, _ := testRenderer(t, config.ScrollConfig{StepPixels: 2, IntervalMs: 50})
	now := time.Now()

	if err := r.SetMessage(mustMessage(t, "first"), now); err != nil {
		t.Fatalf("SetMessage() error = %v", err)
	}
	// Let the hold expire and scroll a few steps.
	now = now.Add(time.Second)
	for i := 0; i < 10; i++ {
		if err := r.Tick(now); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
	}
	if r.Offset() >= leftMargin {
		t.Fatalf("offset did not advance, still %d", r.Offset())
	}

	if err := r.SetMessage(mustMessage(t, "second"), now); err != nil {
		t.Fatalf("SetMessage() error = %v", err)
	}
	if r.Offset() != leftMargin {
		t.Errorf("offset after replacement = %d, want %d", r.Offset(), leftMargin)
	}
}

func TestTickHoldsBeforeScrolling(t *testing.T) {
	r, _ := testRenderer(t, config.ScrollConfig{StepPixels: 2, IntervalMs: 50, HoldMs: 500})
	start := time.Now()

	if err := r.SetMessage(mustMessage(t, "hold me"), start); err != nil {
		t.Fatalf("SetMessage() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := r.Tick(start.Add(time.Duration(i*50) * time.Millisecond)); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
	}
	if r.Offset() != leftMargin {
		t.Errorf("offset moved during hold: %d", r.Offset())
	}

	// Past the hold the text starts moving.
	later := start.Add(time.Second)
	if err := r.Tick(later); err != nil { // hold -> scroll
		t.Fatalf("Tick() error = %v", err)
	}
	if err := r.Tick(later); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if r.Offset() >= leftMargin {
		t.Errorf("offset did not advance after hold: %d", r.Offset())
	}
}

func TestTickWithoutMessageIsStable(t *testing.T) {
	r, _ := testRenderer(t, config.ScrollConfig{StepPixels: 2, IntervalMs: 50})
	now := time.Now()
	for i := 0; i < 20; i++ {
		if err := r.Tick(now.Add(time.Duration(i) * time.Second)); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
	}
	if r.Offset() != 0 || !r.Message().Empty() {
		t.Errorf("idle tick mutated state: offset=%d message=%q", r.Offset(), r.Message().Lines)
	}
}

func TestScrollOffsetStaysNormalized(t *testing.T) {
	cfg := config.ScrollConfig{StepPixels: 3, IntervalMs: 10, GapPixels: 8}
	r, _ := testRenderer(t, cfg)
	now := time.Now()

	msg := mustMessage(t, "normalize me")
	if err := r.SetMessage(msg, now); err != nil {
		t.Fatalf("SetMessage() error = %v", err)
	}

	textWidth := display.MeasureString(msg.Lines[0])
	lo := -(textWidth + cfg.GapPixels)
	hi := lo + r.CycleWidth()

	// Enough ticks to wrap several full cycles.
	for i := 0; i < 1000; i++ {
		now = now.Add(10 * time.Millisecond)
		if err := r.Tick(now); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
		if off := r.Offset(); off <= lo || off > hi {
			t.Fatalf("tick %d: offset %d outside (%d, %d]", i, off, lo, hi)
		}
	}
}

func TestBlankPhaseDarkensPanel(t *testing.T) {
	cfg := config.ScrollConfig{StepPixels: 4, IntervalMs: 10, BlankMs: 10000, GapPixels: 2}
	r, fb := testRenderer(t, cfg)
	now := time.Now()

	if err := r.SetMessage(mustMessage(t, "bye"), now); err != nil {
		t.Fatalf("SetMessage() error = %v", err)
	}

	// Scroll until the cycle completes and the blank phase begins.
	for i := 0; i < 500; i++ {
		now = now.Add(10 * time.Millisecond)
		if err := r.Tick(now); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
		if r.ph == phaseBlank {
			break
		}
	}
	if r.ph != phaseBlank {
		t.Fatal("blank phase never reached")
	}

	img := fb.Snapshot()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			if cr != 0 || cg != 0 || cb != 0 {
				t.Fatalf("lit pixel at (%d,%d) during blank phase", x, y)
			}
		}
	}

	// After the blank expires the cycle restarts with a hold.
	now = now.Add(time.Minute)
	if err := r.Tick(now); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if r.ph != phaseHold || r.Offset() != leftMargin {
		t.Errorf("after blank: phase=%d offset=%d, want hold at margin", r.ph, r.Offset())
	}
}

func TestShowStatusCentersText(t *testing.T) {
	r, fb := testRenderer(t, config.ScrollConfig{StepPixels: 1, IntervalMs: 50})
	if err := r.ShowStatus("online", ToneDefault); err != nil {
		t.Fatalf("ShowStatus() error = %v", err)
	}

	img := fb.Snapshot()
	b := img.Bounds()
	lit := false
	for y := b.Min.Y; y < b.Max.Y && !lit; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			if cr != 0 || cg != 0 || cb != 0 {
				lit = true
				break
			}
		}
	}
	if !lit {
		t.Error("status banner rendered no pixels")
	}
}

func TestBrightnessZeroRendersDark(t *testing.T) {
	r, fb := testRenderer(t, config.ScrollConfig{StepPixels: 1, IntervalMs: 50})
	now := time.Now()
	if err := r.SetMessage(mustMessage(t, "dark"), now); err != nil {
		t.Fatalf("SetMessage() error = %v", err)
	}
	if err := r.SetPalette(NewPalette(0)); err != nil {
		t.Fatalf("SetPalette() error = %v", err)
	}

	img := fb.Snapshot()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			if cr != 0 || cg != 0 || cb != 0 {
				t.Fatalf("lit pixel at (%d,%d) with brightness 0", x, y)
			}
		}
	}
}
