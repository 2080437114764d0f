package marquee

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/marquee/internal/display"
	"github.com/nerrad567/marquee/internal/infrastructure/config"
	"github.com/nerrad567/marquee/internal/infrastructure/logging"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	fb, err := display.NewFramebuffer(64, 32)
	if err != nil {
		t.Fatalf("NewFramebuffer() error = %v", err)
	}
	cfg := config.DisplayConfig{
		Width:      64,
		Height:     32,
		Brightness: 100,
		Scroll:     config.ScrollConfig{StepPixels: 2, IntervalMs: 50},
	}
	return NewEngine(fb, cfg, logging.Default())
}

func TestNewEngineClampsInitialBrightness(t *testing.T) {
	fb, err := display.NewFramebuffer(64, 32)
	if err != nil {
		t.Fatalf("NewFramebuffer() error = %v", err)
	}
	cfg := config.DisplayConfig{Width: 64, Height: 32, Brightness: 250}
	e := NewEngine(fb, cfg, logging.Default())
	if got := e.Brightness(); got != MaxBrightness {
		t.Errorf("Brightness() = %d, want %d", got, MaxBrightness)
	}
}

func TestHandleMessageRejectsInvalidUTF8(t *testing.T) {
	e := testEngine(t)
	err := e.HandleMessage("marquee/panel/message", []byte{0xc3, 0x28})
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("error = %v, want ErrInvalidUTF8", err)
	}
	select {
	case msg := <-e.messages:
		t.Fatalf("invalid payload was queued: %q", msg.Raw)
	default:
	}
}

func TestHandleMessageQueuesLatest(t *testing.T) {
	e := testEngine(t)
	if err := e.HandleMessage("marquee/panel/message", []byte("first")); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if err := e.HandleMessage("marquee/panel/message", []byte("second")); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	select {
	case msg := <-e.messages:
		if msg.Raw != "second" {
			t.Errorf("queued message = %q, want the newest payload", msg.Raw)
		}
	default:
		t.Fatal("no message queued")
	}
}

func TestHandleBrightness(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
		want    int
	}{
		{"plain integer", "60", false, 60},
		{"whitespace", " 45\n", false, 45},
		{"clamped high", "140", false, 100},
		{"clamped low", "-5", false, 0},
		{"not a number", "bright", true, 0},
		{"float", "42.5", true, 0},
		{"empty", "", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testEngine(t)
			err := e.HandleBrightness("marquee/panel/brightness", []byte(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				select {
				case level := <-e.brightness:
					t.Fatalf("malformed payload queued level %d", level)
				default:
				}
				return
			}
			if err != nil {
				t.Fatalf("HandleBrightness() error = %v", err)
			}
			select {
			case level := <-e.brightness:
				if level != tt.want {
					t.Errorf("queued level = %d, want %d", level, tt.want)
				}
			default:
				t.Fatal("no level queued")
			}
		})
	}
}

func TestApplyBrightnessNotifies(t *testing.T) {
	e := testEngine(t)
	var got []int
	e.SetOnBrightness(func(level int) { got = append(got, level) })

	e.applyBrightness(30)
	e.applyBrightness(30) // unchanged, no callback
	e.applyBrightness(70)

	if e.Brightness() != 70 {
		t.Errorf("Brightness() = %d, want 70", e.Brightness())
	}
	if len(got) != 2 || got[0] != 30 || got[1] != 70 {
		t.Errorf("callback levels = %v, want [30 70]", got)
	}
}

func TestConnectionEventsWalkStateMachine(t *testing.T) {
	e := testEngine(t)
	var transitions []State
	e.SetOnStateChange(func(old, next State) { transitions = append(transitions, next) })

	e.applyConnEvent(connEvent{up: true})
	if e.State() != StateRunning {
		t.Fatalf("State() = %s, want running", e.State())
	}
	want := []State{StateLinkUp, StateBrokerConnected, StateRunning}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("transition %d = %s, want %s", i, transitions[i], want[i])
		}
	}

	e.applyConnEvent(connEvent{up: false, err: errors.New("broker gone")})
	if e.State() != StateDisconnected {
		t.Errorf("State() after drop = %s, want disconnected", e.State())
	}

	// Repeated drops are idempotent: no duplicate notifications.
	before := len(transitions)
	e.applyConnEvent(connEvent{up: false})
	if len(transitions) != before {
		t.Errorf("duplicate disconnect produced %d extra transitions", len(transitions)-before)
	}
}

func TestApplyMessageRestoresBufferOnReconnect(t *testing.T) {
	e := testEngine(t)
	e.applyConnEvent(connEvent{up: true})

	msg, err := BuildMessage("persistent ticker", 0)
	if err != nil {
		t.Fatalf("BuildMessage() error = %v", err)
	}
	e.applyMessage(msg)

	e.applyConnEvent(connEvent{up: false})
	e.applyConnEvent(connEvent{up: true})

	got, ok := e.CurrentMessage()
	if !ok || got.Raw != "persistent ticker" {
		t.Errorf("CurrentMessage() = %q ok=%v, want buffer kept across reconnect", got.Raw, ok)
	}
	if e.renderer.Message().Raw != "persistent ticker" {
		t.Errorf("renderer buffer = %q, want restored message", e.renderer.Message().Raw)
	}
}

func TestSubmitMessageReturnsBuiltMessage(t *testing.T) {
	e := testEngine(t)
	msg, err := e.SubmitMessage("Hello\nWorld")
	if err != nil {
		t.Fatalf("SubmitMessage() error = %v", err)
	}
	if len(msg.Lines) != 2 {
		t.Errorf("got %d lines, want 2", len(msg.Lines))
	}
}

func TestStateStrings(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateDisconnected, "disconnected"},
		{StateLinkUp, "link_up"},
		{StateBrokerConnected, "broker_connected"},
		{StateRunning, "running"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestRunShutsDownCleanly(t *testing.T) {
	e := testEngine(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	e.ConnectionUp()
	if _, err := e.SubmitMessage("shutdown test"); err != nil {
		t.Fatalf("SubmitMessage() error = %v", err)
	}

	// Let the loop absorb the events and render a few frames.
	time.Sleep(200 * time.Millisecond)
	if e.State() != StateRunning {
		t.Errorf("State() = %s, want running", e.State())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil on cancellation", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not stop after cancellation")
	}
}

func TestSetBrightnessReturnsClamped(t *testing.T) {
	e := testEngine(t)
	if got := e.SetBrightness(300); got != 100 {
		t.Errorf("SetBrightness(300) = %d, want 100", got)
	}
	// Drain so the next queue check starts clean.
	<-e.brightness
	if got := e.SetBrightness(-1); got != 0 {
		t.Errorf("SetBrightness(-1) = %d, want 0", got)
	}
}
