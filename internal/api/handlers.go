package api

import (
	"encoding/json"
	"errors"
	"image/png"
	"net/http"

	"github.com/nerrad567/marquee/internal/marquee"
)

// StatusResponse is the payload of GET /api/v1/status.
type StatusResponse struct {
	State      string   `json:"state"`
	Brightness int      `json:"brightness"`
	Message    string   `json:"message,omitempty"`
	Lines      []string `json:"lines,omitempty"`
	Tone       string   `json:"tone,omitempty"`
	Clients    int      `json:"ws_clients"`
}

// BrightnessRequest is the payload of PUT /api/v1/brightness.
type BrightnessRequest struct {
	Level int `json:"level"`
}

// MessageRequest is the payload of POST /api/v1/message.
type MessageRequest struct {
	Text string `json:"text"`
}

// handleStatus reports the engine state, the active message and the
// WebSocket client count.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := StatusResponse{
		State:      s.engine.State().String(),
		Brightness: s.engine.Brightness(),
	}
	if msg, ok := s.engine.CurrentMessage(); ok {
		resp.Message = msg.Raw
		resp.Lines = msg.Lines
		resp.Tone = msg.Tone.String()
	}
	if s.hub != nil {
		resp.Clients = s.hub.ClientCount()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetBrightness returns the applied brightness level.
func (s *Server) handleGetBrightness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"level": s.engine.Brightness()})
}

// handleSetBrightness queues a brightness change. Out-of-range levels are
// clamped, matching the MQTT topic's behavior; the response carries the
// level that will actually apply.
func (s *Server) handleSetBrightness(w http.ResponseWriter, r *http.Request) {
	var req BrightnessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	applied := s.engine.SetBrightness(req.Level)
	writeJSON(w, http.StatusOK, map[string]int{"level": applied})
}

// handleGetMessage returns the buffered message.
func (s *Server) handleGetMessage(w http.ResponseWriter, _ *http.Request) {
	msg, ok := s.engine.CurrentMessage()
	if !ok {
		writeNotFound(w, "no message buffered")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"text":  msg.Raw,
		"lines": msg.Lines,
		"tone":  msg.Tone.String(),
	})
}

// handlePostMessage submits a new message to the ticker, with the same
// validation as the MQTT message topic.
func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	msg, err := s.engine.SubmitMessage(req.Text)
	if err != nil {
		if errors.Is(err, marquee.ErrInvalidUTF8) {
			writeBadRequest(w, "message text is not valid UTF-8")
			return
		}
		writeInternalError(w, "failed to accept message")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"lines": len(msg.Lines),
		"tone":  msg.Tone.String(),
	})
}

// handlePreview streams the current framebuffer as a PNG, so the panel
// content can be checked remotely without camera or hardware access.
func (s *Server) handlePreview(w http.ResponseWriter, _ *http.Request) {
	if s.fb == nil {
		writeNotFound(w, "preview not available")
		return
	}

	img := s.fb.Snapshot()
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := png.Encode(w, img); err != nil {
		s.logger.Debug("preview encode failed", "error", err)
	}
}
