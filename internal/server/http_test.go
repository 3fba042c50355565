package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/muhammaduzair11/SehatAI/internal/audio"
	"github.com/muhammaduzair11/SehatAI/internal/config"
	"github.com/muhammaduzair11/SehatAI/internal/metrics"
	"github.com/muhammaduzair11/SehatAI/internal/registry"
	"github.com/muhammaduzair11/SehatAI/internal/session"
	"github.com/muhammaduzair11/SehatAI/internal/speech"
)

// failingOpener denies all device acquisition, so connect attempts land in
// the error state without touching real hardware.
type failingOpener struct{}

func (failingOpener) OpenInput(ctx context.Context) (audio.InputDevice, error) {
	return nil, errors.New("no capture device")
}

func (failingOpener) OpenOutput(ctx context.Context, sampleRate int) (audio.OutputDevice, error) {
	return nil, errors.New("no playback device")
}

type noSpeech struct{}

func (noSpeech) NewRecognizer(ctx context.Context, language string) (speech.Recognizer, error) {
	return nil, errors.New("no recognizer")
}

func (noSpeech) NewSynthesizer(ctx context.Context, language string) (speech.Synthesizer, error) {
	return nil, errors.New("no synthesizer")
}

func newTestServer(t *testing.T) *HTTPServer {
	t.Helper()

	cfg := &config.Config{
		HTTP:     config.HTTPConfig{Port: 8080, Address: "127.0.0.1", Enabled: true},
		Audio:    config.AudioConfig{InputSampleRate: 16000, OutputSampleRate: 24000, FrameSize: 4096, Channels: 1, BitDepth: 16},
		Dialogue: config.DialogueConfig{Language: "ur-PK", EndCallGrace: 3, MinPhoneDigits: 7},
		Logging:  config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
	}

	m := metrics.NewMetricsWith(prometheus.NewRegistry())
	store := registry.NewStore(registry.Seed())
	controller := session.NewController(slog.Default(), cfg, m, store, session.Deps{
		Devices: failingOpener{},
		Speech:  noSpeech{},
	})

	return NewHTTPServer(cfg.HTTP, slog.Default(), cfg, controller, store, m)
}

func getJSON(t *testing.T, handler http.Handler, path string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("GET %s: invalid JSON response: %v", path, err)
	}
	return rec.Code, body
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	code, body := getJSON(t, server.Handler(), "/health")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v, want healthy", body["status"])
	}
}

func TestSessionEndpointReportsDisconnected(t *testing.T) {
	server := newTestServer(t)

	code, body := getJSON(t, server.Handler(), "/session")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["state"] != "disconnected" {
		t.Errorf("state = %v, want disconnected", body["state"])
	}
	if body["volume_level"] != float64(0) {
		t.Errorf("volume_level = %v, want 0", body["volume_level"])
	}
	if body["uptime"] != "0s" {
		t.Errorf("uptime = %v, want 0s", body["uptime"])
	}
}

func TestAppointmentsEndpointReturnsSeed(t *testing.T) {
	server := newTestServer(t)

	code, body := getJSON(t, server.Handler(), "/appointments")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["total"] != float64(2) {
		t.Errorf("total = %v, want 2", body["total"])
	}
}

func TestConnectRejectsUnknownMode(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/session/connect", strings.NewReader(`{"mode":"sideways"}`))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestConnectFailureReturnsConflict(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/session/connect", strings.NewReader(`{"mode":"inbound"}`))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body["state"] != "error" {
		t.Errorf("state = %v, want error", body["state"])
	}
}

func TestDisconnectAlwaysSucceeds(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/session/disconnect", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/appointments", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
