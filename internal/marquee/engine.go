package marquee

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/marquee/internal/display"
	"github.com/nerrad567/marquee/internal/infrastructure/config"
	"github.com/nerrad567/marquee/internal/infrastructure/logging"
)

// State is the engine's connectivity state. The panel shows a status
// banner in every state except StateRunning.
type State int

const (
	// StateDisconnected means no broker connectivity.
	StateDisconnected State = iota

	// StateLinkUp means the network link is up but the broker session
	// is not established yet.
	StateLinkUp

	// StateBrokerConnected means the broker session is up and
	// subscriptions are being restored.
	StateBrokerConnected

	// StateRunning means subscriptions are live and the ticker is
	// rendering messages.
	StateRunning
)

// String implements fmt.Stringer. The values appear in logs, event
// payloads and the status API, so they are stable identifiers.
func (s State) String() string {
	switch s {
	case StateLinkUp:
		return "link_up"
	case StateBrokerConnected:
		return "broker_connected"
	case StateRunning:
		return "running"
	default:
		return "disconnected"
	}
}

// connEvent carries a connectivity change into the engine goroutine.
type connEvent struct {
	up  bool
	err error
}

// Engine is the ticker's main loop. One goroutine, started by Run, owns
// all mutable rendering state: the message buffer, brightness, scroll
// position and connectivity state. MQTT handlers and API requests never
// touch that state directly; they hand work over on channels and the
// loop applies it between ticks. Snapshot accessors (State, Brightness,
// CurrentMessage) are safe from any goroutine.
type Engine struct {
	log      *logging.Logger
	cfg      config.DisplayConfig
	renderer *Renderer

	messages   chan Message
	brightness chan int
	conn       chan connEvent

	mu      sync.RWMutex
	state   State
	level   int
	current Message
	hasMsg  bool

	// banner is the status text on screen while not running. Only the
	// engine goroutine touches it.
	banner     string
	bannerTone Tone

	onStateChange func(old, next State)
	onMessage     func(Message)
	onBrightness  func(level int)
	onFrameSample func(frames int, avgDraw time.Duration)
}

// NewEngine builds an engine rendering to matrix. The initial brightness
// comes from configuration and is clamped like any other source.
func NewEngine(matrix display.Matrix, cfg config.DisplayConfig, log *logging.Logger) *Engine {
	level := ClampBrightness(cfg.Brightness)
	return &Engine{
		log:      log.WithComponent("engine"),
		cfg:      cfg,
		renderer: NewRenderer(matrix, cfg.Scroll, NewPalette(level)),

		// Latest-wins buffers: a flood of retained messages or rapid
		// brightness twiddling must never block an MQTT handler.
		messages:   make(chan Message, 1),
		brightness: make(chan int, 1),
		conn:       make(chan connEvent, 4),

		state: StateDisconnected,
		level: level,
	}
}

// SetOnStateChange registers a callback invoked from the engine goroutine
// whenever the connectivity state changes.
func (e *Engine) SetOnStateChange(fn func(old, next State)) { e.onStateChange = fn }

// SetOnMessage registers a callback invoked from the engine goroutine
// when a message is accepted into the buffer.
func (e *Engine) SetOnMessage(fn func(Message)) { e.onMessage = fn }

// SetOnBrightness registers a callback invoked from the engine goroutine
// when the applied brightness changes.
func (e *Engine) SetOnBrightness(fn func(level int)) { e.onBrightness = fn }

// SetOnFrameSample registers a callback invoked from the engine goroutine
// roughly once per second with the frame count and mean draw time since
// the previous sample.
func (e *Engine) SetOnFrameSample(fn func(frames int, avgDraw time.Duration)) { e.onFrameSample = fn }

// State returns the current connectivity state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Brightness returns the applied brightness level.
func (e *Engine) Brightness() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.level
}

// CurrentMessage returns the buffered message, if any.
func (e *Engine) CurrentMessage() (Message, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current, e.hasMsg
}

// HandleMessage is the MQTT handler for message topics. Invalid UTF-8 is
// rejected and the previous buffer kept. A valid payload replaces the
// buffer wholesale; if the engine is mid-tick the newest payload wins and
// any older queued one is dropped.
func (e *Engine) HandleMessage(topic string, payload []byte) error {
	msg, err := BuildMessage(string(payload), e.wrapWidth())
	if err != nil {
		return fmt.Errorf("message on %s rejected: %w", topic, err)
	}
	e.offerMessage(msg)
	return nil
}

// SubmitMessage accepts a message from the local API, with the same
// validation and replacement semantics as the MQTT path.
func (e *Engine) SubmitMessage(text string) (Message, error) {
	msg, err := BuildMessage(text, e.wrapWidth())
	if err != nil {
		return Message{}, err
	}
	e.offerMessage(msg)
	return msg, nil
}

// HandleBrightness is the MQTT handler for brightness topics. The payload
// must parse as an integer; out-of-range values are clamped, malformed
// ones rejected without touching the current level.
func (e *Engine) HandleBrightness(topic string, payload []byte) error {
	level, err := strconv.Atoi(strings.TrimSpace(string(payload)))
	if err != nil {
		return fmt.Errorf("brightness on %s rejected: %w", topic, err)
	}
	e.SetBrightness(level)
	return nil
}

// SetBrightness queues a brightness change and returns the clamped level
// that will be applied.
func (e *Engine) SetBrightness(level int) int {
	level = ClampBrightness(level)
	select {
	case e.brightness <- level:
	default:
		// Replace the queued level; only the newest matters.
		select {
		case <-e.brightness:
		default:
		}
		select {
		case e.brightness <- level:
		default:
		}
	}
	return level
}

// ConnectionUp signals broker connectivity. Wire it to the MQTT client's
// connect callback.
func (e *Engine) ConnectionUp() {
	e.conn <- connEvent{up: true}
}

// ConnectionDown signals loss of broker connectivity.
func (e *Engine) ConnectionDown(err error) {
	e.conn <- connEvent{up: false, err: err}
}

// Run drives the ticker until ctx is cancelled. It blanks the panel on
// the way out and returns nil on a clean shutdown.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Info("engine started",
		"interval_ms", e.cfg.Scroll.IntervalMs,
		"brightness", e.Brightness())

	e.banner, e.bannerTone = "connecting", ToneDefault
	if err := e.renderer.ShowStatus(e.banner, e.bannerTone); err != nil {
		return fmt.Errorf("initial status draw failed: %w", err)
	}

	ticker := time.NewTicker(e.cfg.ScrollInterval())
	defer ticker.Stop()

	var (
		frames     int
		drawTotal  time.Duration
		lastSample = time.Now()
	)

	for {
		select {
		case <-ctx.Done():
			e.log.Info("engine stopping")
			if err := e.renderer.Clear(); err != nil {
				e.log.Warn("final blank failed", "error", err)
			}
			return nil

		case ev := <-e.conn:
			e.applyConnEvent(ev)

		case level := <-e.brightness:
			e.applyBrightness(level)

		case msg := <-e.messages:
			e.applyMessage(msg)

		case now := <-ticker.C:
			if e.State() != StateRunning {
				continue
			}
			start := time.Now()
			if err := e.renderer.Tick(now); err != nil {
				e.log.Error("tick failed", "error", err)
				continue
			}
			frames++
			drawTotal += time.Since(start)
			if now.Sub(lastSample) >= time.Second {
				if e.onFrameSample != nil && frames > 0 {
					e.onFrameSample(frames, drawTotal/time.Duration(frames))
				}
				frames = 0
				drawTotal = 0
				lastSample = now
			}
		}
	}
}

// offerMessage queues a message, displacing any queued predecessor.
func (e *Engine) offerMessage(msg Message) {
	select {
	case e.messages <- msg:
	default:
		select {
		case <-e.messages:
		default:
		}
		select {
		case e.messages <- msg:
		default:
		}
	}
}

// applyConnEvent walks the state machine. Connect callbacks fire after
// subscriptions are restored, so an up event goes straight through the
// intermediate states to running.
func (e *Engine) applyConnEvent(ev connEvent) {
	if !ev.up {
		e.setState(StateDisconnected)
		if ev.err != nil {
			e.log.Warn("broker connection lost", "error", ev.err)
		}
		e.showBanner("offline", ToneNews)
		return
	}

	e.setState(StateLinkUp)
	e.setState(StateBrokerConnected)
	e.setState(StateRunning)

	if msg, ok := e.CurrentMessage(); ok {
		e.banner = ""
		if err := e.renderer.SetMessage(msg, time.Now()); err != nil {
			e.log.Error("message redraw failed", "error", err)
		}
		return
	}
	e.showBanner("online", ToneDefault)
}

func (e *Engine) applyBrightness(level int) {
	e.mu.Lock()
	changed := e.level != level
	e.level = level
	e.mu.Unlock()

	if !changed {
		return
	}
	e.log.Info("brightness changed", "level", level)
	if err := e.renderer.SetPalette(NewPalette(level)); err != nil {
		e.log.Error("palette redraw failed", "error", err)
	}
	if e.State() != StateRunning && e.banner != "" {
		// Keep the status banner visible at the new brightness.
		e.showBanner(e.banner, e.bannerTone)
	}
	if e.onBrightness != nil {
		e.onBrightness(level)
	}
}

func (e *Engine) applyMessage(msg Message) {
	e.mu.Lock()
	e.current = msg
	e.hasMsg = true
	e.mu.Unlock()

	e.log.Info("message accepted",
		"lines", len(msg.Lines),
		"bytes", len(msg.Raw),
		"tone", msg.Tone.String())

	if e.State() == StateRunning {
		e.banner = ""
		if err := e.renderer.SetMessage(msg, time.Now()); err != nil {
			e.log.Error("message draw failed", "error", err)
		}
	}
	if e.onMessage != nil {
		e.onMessage(msg)
	}
}

func (e *Engine) setState(next State) {
	e.mu.Lock()
	old := e.state
	if old == next {
		e.mu.Unlock()
		return
	}
	e.state = next
	e.mu.Unlock()

	e.log.Info("state changed", "from", old.String(), "to", next.String())
	if e.onStateChange != nil {
		e.onStateChange(old, next)
	}
}

func (e *Engine) showBanner(text string, tone Tone) {
	e.banner = text
	e.bannerTone = tone
	if err := e.renderer.ShowStatus(text, tone); err != nil {
		e.log.Error("status draw failed", "error", err)
	}
}

// wrapWidth is the usable text width for word wrapping.
func (e *Engine) wrapWidth() int {
	return e.cfg.Width - 2*leftMargin
}
