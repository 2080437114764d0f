package marquee

import (
	"time"

	"github.com/nerrad567/marquee/internal/display"
	"github.com/nerrad567/marquee/internal/infrastructure/config"
)

// phase is the renderer's position in the hold / scroll / blank cycle.
type phase int

const (
	phaseIdle phase = iota
	phaseHold
	phaseScroll
	phaseBlank
)

// leftMargin is where text rests during the hold phase and where the
// scroll cycle visually starts.
const leftMargin = 2

// Renderer draws the message buffer onto a Matrix and advances the scroll
// animation. It is owned by the engine goroutine: no method is safe for
// concurrent use, and none of them need to be.
type Renderer struct {
	matrix  display.Matrix
	cfg     config.ScrollConfig
	palette Palette

	msg       Message
	textWidth int
	offset    int
	ph        phase
	phaseEnd  time.Time
}

// NewRenderer builds a renderer drawing to matrix with the given scroll
// tuning and an initial palette.
func NewRenderer(matrix display.Matrix, cfg config.ScrollConfig, palette Palette) *Renderer {
	return &Renderer{
		matrix:  matrix,
		cfg:     cfg,
		palette: palette,
		ph:      phaseIdle,
	}
}

// SetPalette swaps the active palette. The current frame is redrawn so a
// brightness change is visible immediately, not on the next scroll step.
func (r *Renderer) SetPalette(p Palette) error {
	r.palette = p
	if r.ph == phaseIdle || r.ph == phaseBlank {
		return r.clear()
	}
	return r.draw()
}

// SetMessage replaces the message buffer, resets the scroll offset and
// starts a new hold phase.
func (r *Renderer) SetMessage(msg Message, now time.Time) error {
	r.msg = msg
	r.textWidth = 0
	for _, line := range msg.Lines {
		if w := display.MeasureString(line); w > r.textWidth {
			r.textWidth = w
		}
	}
	r.offset = leftMargin
	if msg.Empty() {
		r.ph = phaseIdle
		return r.clear()
	}
	r.ph = phaseHold
	r.phaseEnd = now.Add(holdDuration(r.cfg))
	return r.draw()
}

// Message returns the current buffer.
func (r *Renderer) Message() Message { return r.msg }

// Offset returns the current scroll offset, for inspection.
func (r *Renderer) Offset() int { return r.offset }

// CycleWidth is the total travel of one scroll cycle: the text width, the
// wraparound gap and the panel width the text crosses while leaving.
func (r *Renderer) CycleWidth() int {
	return r.textWidth + r.cfg.GapPixels + r.matrix.Bounds().Dx()
}

// Tick advances the animation by one step and redraws. With no message
// buffered it keeps the panel dark. Ticks never mutate the buffer itself,
// only the scroll position and phase.
func (r *Renderer) Tick(now time.Time) error {
	switch r.ph {
	case phaseIdle:
		return nil

	case phaseHold:
		if now.Before(r.phaseEnd) {
			return nil
		}
		r.ph = phaseScroll
		return r.draw()

	case phaseBlank:
		if now.Before(r.phaseEnd) {
			return nil
		}
		r.ph = phaseHold
		r.phaseEnd = now.Add(holdDuration(r.cfg))
		r.offset = leftMargin
		return r.draw()

	default: // phaseScroll
		r.offset -= r.step()
		if r.wrapped() {
			if r.cfg.BlankMs > 0 {
				r.ph = phaseBlank
				r.phaseEnd = now.Add(time.Duration(r.cfg.BlankMs) * time.Millisecond)
				r.offset = leftMargin
				return r.clear()
			}
			r.normalize()
		}
		return r.draw()
	}
}

// Clear blanks the panel and drops back to idle. The message buffer is
// kept so a later Resume via SetMessage is not needed for status reads.
func (r *Renderer) Clear() error {
	r.ph = phaseIdle
	return r.clear()
}

// ShowStatus draws a static centered line, used for connection state
// banners while the ticker is not running.
func (r *Renderer) ShowStatus(text string, tone Tone) error {
	r.ph = phaseIdle
	bounds := r.matrix.Bounds()
	r.matrix.Fill(r.palette.BackgroundFor(tone))

	x := (bounds.Dx() - display.MeasureString(text)) / 2
	if x < 0 {
		x = 0
	}
	y := (bounds.Dy() - display.LineHeight()) / 2
	display.DrawOutlinedString(r.matrix, text, x, y, r.palette.White, r.palette.Black)
	return r.matrix.Show()
}

// step is the per-tick scroll distance, never less than one pixel.
func (r *Renderer) step() int {
	if r.cfg.StepPixels < 1 {
		return 1
	}
	return r.cfg.StepPixels
}

// wrapped reports whether the text has fully left the panel, including
// the configured gap.
func (r *Renderer) wrapped() bool {
	return r.offset <= -(r.textWidth + r.cfg.GapPixels)
}

// normalize folds the offset back into [leftMargin - cycle, leftMargin)
// so the next cycle continues seamlessly from the right edge.
func (r *Renderer) normalize() {
	cycle := r.CycleWidth()
	if cycle <= 0 {
		r.offset = leftMargin
		return
	}
	for r.wrapped() {
		r.offset += cycle
	}
}

// draw renders the full frame: tone background, then each line with a
// white face and black outline, vertically centered as a block.
func (r *Renderer) draw() error {
	if r.msg.Empty() {
		return r.clear()
	}
	bounds := r.matrix.Bounds()
	r.matrix.Fill(r.palette.BackgroundFor(r.msg.Tone))

	lineH := display.LineHeight()
	top := (bounds.Dy() - len(r.msg.Lines)*lineH) / 2
	if top < 0 {
		top = 0
	}
	for i, line := range r.msg.Lines {
		display.DrawOutlinedString(r.matrix, line, r.offset, top+i*lineH, r.palette.White, r.palette.Black)
	}
	return r.matrix.Show()
}

func (r *Renderer) clear() error {
	r.matrix.Fill(r.palette.Black)
	return r.matrix.Show()
}

func holdDuration(cfg config.ScrollConfig) time.Duration {
	return time.Duration(cfg.HoldMs) * time.Millisecond
}
