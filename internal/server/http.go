package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/muhammaduzair11/SehatAI/internal/config"
	"github.com/muhammaduzair11/SehatAI/internal/metrics"
	"github.com/muhammaduzair11/SehatAI/internal/registry"
	"github.com/muhammaduzair11/SehatAI/internal/session"
)

// HTTPServer provides HTTP API endpoints for session control and monitoring
type HTTPServer struct {
	server     *http.Server
	logger     *slog.Logger
	config     *config.Config
	controller *session.Controller
	store      *registry.Store
	metrics    *metrics.Metrics

	startTime time.Time
}

// NewHTTPServer creates a new HTTP API server
func NewHTTPServer(cfg config.HTTPConfig, logger *slog.Logger,
	appConfig *config.Config, controller *session.Controller, store *registry.Store, m *metrics.Metrics) *HTTPServer {

	h := &HTTPServer{
		logger:     logger,
		config:     appConfig,
		controller: controller,
		store:      store,
		metrics:    m,
		startTime:  time.Now(),
	}

	mux := http.NewServeMux()
	h.setupRoutes(mux)

	h.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return h
}

// Handler exposes the route table, mainly for tests.
func (h *HTTPServer) Handler() http.Handler {
	return h.server.Handler
}

// setupRoutes configures HTTP API routes
func (h *HTTPServer) setupRoutes(mux *http.ServeMux) {
	// Health check endpoint
	mux.HandleFunc("/health", h.withMetrics("/health", h.handleHealth))

	// Session state and control
	mux.HandleFunc("/session", h.withMetrics("/session", h.handleSession))
	mux.HandleFunc("/session/log", h.withMetrics("/session/log", h.handleSessionLog))
	mux.HandleFunc("/session/connect", h.withMetrics("/session/connect", h.handleConnect))
	mux.HandleFunc("/session/disconnect", h.withMetrics("/session/disconnect", h.handleDisconnect))

	// Appointment registry view
	mux.HandleFunc("/appointments", h.withMetrics("/appointments", h.handleAppointments))

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Root endpoint with API documentation
	mux.HandleFunc("/", h.withMetrics("/", h.handleRoot))
}

// withMetrics wraps an HTTP handler with metrics collection
func (h *HTTPServer) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		ww := &responseWriter{ResponseWriter: w, statusCode: 200}
		handler(ww, r)

		h.metrics.HTTPRequests.WithLabelValues(endpoint, strconv.Itoa(ww.statusCode)).Inc()
		h.metrics.HTTPRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// handleHealth implements the /health endpoint
func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).String(),
		"service": map[string]interface{}{
			"name":    "sehatai",
			"version": "1.0.0",
		},
		"components": map[string]interface{}{
			"session": map[string]interface{}{
				"state": h.controller.State().String(),
				"mode":  h.controller.Mode().String(),
			},
			"registry": map[string]interface{}{
				"appointments": h.store.Count(),
			},
			"remote": map[string]interface{}{
				"enabled": h.config.Remote.Enabled(),
			},
		},
	}

	writeJSON(w, http.StatusOK, health)
}

// handleSession implements the GET /session endpoint
func (h *HTTPServer) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state":        h.controller.State().String(),
		"mode":         h.controller.Mode().String(),
		"volume_level": h.controller.VolumeLevel(),
		"uptime":       h.controller.Uptime().String(),
		"show_results": h.controller.ShowResults(),
	})
}

// handleSessionLog implements the GET /session/log endpoint
func (h *HTTPServer) handleSessionLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entries := h.controller.LogEntries()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":   len(entries),
		"entries": entries,
	})
}

// connectRequest is the POST /session/connect body.
type connectRequest struct {
	Mode     string `json:"mode"`
	TargetID string `json:"target_id,omitempty"`
}

// handleConnect implements the POST /session/connect endpoint
func (h *HTTPServer) handleConnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var mode session.Mode
	switch req.Mode {
	case "inbound", "":
		mode = session.ModeInbound
	case "outbound":
		mode = session.ModeOutbound
	default:
		http.Error(w, fmt.Sprintf("Unknown mode '%s'", req.Mode), http.StatusBadRequest)
		return
	}

	// An outbound call with no explicit target dials the earliest pending
	// appointment.
	targetID := req.TargetID
	if mode == session.ModeOutbound && targetID == "" {
		if appt, ok := h.store.FirstPending(); ok {
			targetID = appt.ID
		}
	}

	if err := h.controller.Connect(r.Context(), mode, targetID); err != nil {
		h.logger.Warn("Connect request failed",
			slog.String("mode", req.Mode),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error": err.Error(),
			"state": h.controller.State().String(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state": h.controller.State().String(),
		"mode":  h.controller.Mode().String(),
	})
}

// handleDisconnect implements the POST /session/disconnect endpoint
func (h *HTTPServer) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.controller.Disconnect()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state": h.controller.State().String(),
	})
}

// handleAppointments implements the GET /appointments endpoint
func (h *HTTPServer) handleAppointments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	appointments := h.store.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":        len(appointments),
		"timestamp":    time.Now().UTC(),
		"appointments": appointments,
	})
}

// handleRoot implements the / endpoint with API documentation
func (h *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "sehatai",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"GET /health":              "Service health status",
			"GET /session":             "Current session state and volume level",
			"GET /session/log":         "Session event log",
			"POST /session/connect":    "Start a call session ({mode, target_id})",
			"POST /session/disconnect": "End the current session",
			"GET /appointments":        "Appointment registry snapshot",
			"GET /metrics":             "Prometheus metrics",
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Start starts the HTTP server
func (h *HTTPServer) Start() error {
	h.logger.Info("Starting HTTP API server",
		slog.String("address", h.server.Addr),
	)

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.logger.Info("Stopping HTTP API server...")

	return h.server.Shutdown(ctx)
}
