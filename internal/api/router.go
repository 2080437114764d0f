package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// defaultWebSocketPath serves the event stream when websocket.path is
// not configured.
const defaultWebSocketPath = "/api/v1/ws"

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)

		r.Route("/brightness", func(r chi.Router) {
			r.Get("/", s.handleGetBrightness)
			r.Put("/", s.handleSetBrightness)
		})

		r.Route("/message", func(r chi.Router) {
			r.Get("/", s.handleGetMessage)
			r.Post("/", s.handlePostMessage)
		})

		r.Get("/preview", s.handlePreview)
	})

	wsPath := s.wsCfg.Path
	if wsPath == "" {
		wsPath = defaultWebSocketPath
	}
	r.Get(wsPath, s.handleWebSocket)

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
