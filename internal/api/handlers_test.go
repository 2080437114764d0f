package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nerrad567/marquee/internal/display"
	"github.com/nerrad567/marquee/internal/infrastructure/config"
	"github.com/nerrad567/marquee/internal/infrastructure/logging"
	"github.com/nerrad567/marquee/internal/marquee"
)

func testServer(t *testing.T) (*Server, *marquee.Engine) {
	t.Helper()
	fb, err := display.NewFramebuffer(64, 32)
	if err != nil {
		t.Fatalf("NewFramebuffer() error = %v", err)
	}
	engine := marquee.NewEngine(fb, config.DisplayConfig{
		Width:      64,
		Height:     32,
		Brightness: 80,
		Scroll:     config.ScrollConfig{StepPixels: 2, IntervalMs: 50},
	}, logging.Default())

	s, err := New(Deps{
		Config:      config.APIConfig{Host: "127.0.0.1", Port: 0},
		Logger:      logging.Default(),
		Engine:      engine,
		Framebuffer: fb,
		Version:     "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s, engine
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(Deps{Engine: nil, Logger: logging.Default()}); err == nil {
		t.Error("expected error without engine")
	}
	if _, err := New(Deps{}); err == nil {
		t.Error("expected error without logger")
	}
}

func TestHandleHealth(t *testing.T) {
	s, _ := testServer(t)
	ts := httptest.NewServer(s.buildRouter())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if body["status"] != "ok" || body["version"] != "test" {
		t.Errorf("body = %v", body)
	}
}

func TestHandleStatus(t *testing.T) {
	s, _ := testServer(t)
	ts := httptest.NewServer(s.buildRouter())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/status")
	if err != nil {
		t.Fatalf("GET /status error = %v", err)
	}
	defer resp.Body.Close()

	var body StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if body.State != "disconnected" {
		t.Errorf("state = %q, want disconnected before broker contact", body.State)
	}
	if body.Brightness != 80 {
		t.Errorf("brightness = %d, want configured 80", body.Brightness)
	}
}

func TestBrightnessRoundTrip(t *testing.T) {
	s, _ := testServer(t)
	ts := httptest.NewServer(s.buildRouter())
	defer ts.Close()

	tests := []struct {
		name  string
		level int
		want  int
	}{
		{"in range", 55, 55},
		{"clamped high", 200, 100},
		{"clamped low", -3, 0},
	}

	client := &http.Client{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(BrightnessRequest{Level: tt.level})
			req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/v1/brightness", bytes.NewReader(body))
			resp, err := client.Do(req)
			if err != nil {
				t.Fatalf("PUT /brightness error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			var out map[string]int
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				t.Fatalf("decode error = %v", err)
			}
			if out["level"] != tt.want {
				t.Errorf("applied level = %d, want %d", out["level"], tt.want)
			}
		})
	}
}

func TestSetBrightnessRejectsBadJSON(t *testing.T) {
	s, _ := testServer(t)
	ts := httptest.NewServer(s.buildRouter())
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/v1/brightness", bytes.NewReader([]byte("not json")))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT /brightness error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestPostMessage(t *testing.T) {
	s, _ := testServer(t)
	ts := httptest.NewServer(s.buildRouter())
	defer ts.Close()

	body, _ := json.Marshal(MessageRequest{Text: "Hello\nWorld"})
	resp, err := http.Post(ts.URL+"/api/v1/message", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /message error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if out["lines"].(float64) != 2 {
		t.Errorf("lines = %v, want 2", out["lines"])
	}
}

func TestGetMessageNotFoundBeforeFirstMessage(t *testing.T) {
	s, _ := testServer(t)
	ts := httptest.NewServer(s.buildRouter())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/message")
	if err != nil {
		t.Fatalf("GET /message error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestStatusReflectsRunningEngine(t *testing.T) {
	s, engine := testServer(t)
	ts := httptest.NewServer(s.buildRouter())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx) //nolint:errcheck // loop exits on cancel

	engine.ConnectionUp()
	if _, err := engine.SubmitMessage("live status"); err != nil {
		t.Fatalf("SubmitMessage() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get(ts.URL + "/api/v1/status")
		if err != nil {
			t.Fatalf("GET /status error = %v", err)
		}
		var body StatusResponse
		err = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("decode error = %v", err)
		}
		if body.State == "running" && body.Message == "live status" {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("status never reflected the message: %+v", body)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestPreviewReturnsPNG(t *testing.T) {
	s, _ := testServer(t)
	ts := httptest.NewServer(s.buildRouter())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/preview")
	if err != nil {
		t.Fatalf("GET /preview error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("png decode error = %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 32 {
		t.Errorf("preview geometry = %v, want 64x32", img.Bounds())
	}
}

func TestPreviewUnavailableWithoutFramebuffer(t *testing.T) {
	s, _ := testServer(t)
	s.fb = nil
	ts := httptest.NewServer(s.buildRouter())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/preview")
	if err != nil {
		t.Fatalf("GET /preview error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestWebSocketRouteFollowsConfiguredPath(t *testing.T) {
	s, _ := testServer(t)
	s.wsCfg.Path = "/stream"
	ts := httptest.NewServer(s.buildRouter())
	defer ts.Close()

	// A plain GET is not a valid upgrade, so a mounted route answers 400
	// from the upgrader while an unmounted one answers 404.
	resp, err := http.Get(ts.URL + "/stream")
	if err != nil {
		t.Fatalf("GET /stream error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("GET /stream status = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + defaultWebSocketPath)
	if err != nil {
		t.Fatalf("GET %s error = %v", defaultWebSocketPath, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET %s status = %d, want 404 once the path moved", defaultWebSocketPath, resp.StatusCode)
	}
}

func TestWebSocketRouteDefaultPath(t *testing.T) {
	s, _ := testServer(t)
	ts := httptest.NewServer(s.buildRouter())
	defer ts.Close()

	resp, err := http.Get(ts.URL + defaultWebSocketPath)
	if err != nil {
		t.Fatalf("GET %s error = %v", defaultWebSocketPath, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("GET %s status = %d, want 400", defaultWebSocketPath, resp.StatusCode)
	}
}
