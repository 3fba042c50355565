package remote

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muhammaduzair11/SehatAI/internal/registry"
)

func newWebsocketTestServer(t *testing.T, handler func(conn *websocket.Conn)) (string, func()) {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		handler(conn)
	}))

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	return wsURL, server.Close
}

func testOptions(endpoint string) ConnectOptions {
	return ConnectOptions{
		Endpoint:          endpoint,
		APIKey:            "test-key",
		Model:             "test-model",
		Voice:             "Aoede",
		SystemInstruction: SystemInstruction,
		ConnectTimeout:    5 * time.Second,
	}
}

func TestConnectSendsSetupAndWaitsForAck(t *testing.T) {
	t.Parallel()

	setupSeen := make(chan setupMessage, 1)
	serverURL, closeServer := newWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()

		var setup setupMessage
		if err := conn.ReadJSON(&setup); err != nil {
			return
		}
		setupSeen <- setup

		_ = conn.WriteJSON(map[string]any{"setupComplete": map[string]any{}})
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(2*time.Second))
	})
	defer closeServer()

	session, err := Connect(context.Background(), slog.Default(), testOptions(serverURL))
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer session.Close()

	setup := <-setupSeen
	if setup.Setup.Model != "test-model" {
		t.Errorf("setup model = %q, want test-model", setup.Setup.Model)
	}
	if len(setup.Setup.Tools) != 1 || len(setup.Setup.Tools[0].FunctionDeclarations) != 3 {
		t.Fatalf("setup tools = %+v, want one entry with three declarations", setup.Setup.Tools)
	}
	names := map[string]bool{}
	for _, decl := range setup.Setup.Tools[0].FunctionDeclarations {
		names[decl.Name] = true
	}
	for _, want := range []string{"book_appointment", "confirm_reminder", "end_call"} {
		if !names[want] {
			t.Errorf("missing tool declaration %q", want)
		}
	}
}

func TestConnectRejectsNonAckFirstFrame(t *testing.T) {
	t.Parallel()

	serverURL, closeServer := newWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		var setup setupMessage
		_ = conn.ReadJSON(&setup)
		_ = conn.WriteJSON(map[string]any{"serverContent": map[string]any{"interrupted": true}})
	})
	defer closeServer()

	_, err := Connect(context.Background(), slog.Default(), testOptions(serverURL))
	if err == nil {
		t.Fatal("expected error for non-ack first frame")
	}
}

func TestSessionDecodesServerEvents(t *testing.T) {
	t.Parallel()

	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	serverURL, closeServer := newWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		var setup setupMessage
		_ = conn.ReadJSON(&setup)
		_ = conn.WriteJSON(map[string]any{"setupComplete": map[string]any{}})

		_ = conn.WriteJSON(map[string]any{
			"serverContent": map[string]any{
				"modelTurn": map[string]any{
					"parts": []map[string]any{
						{"inlineData": map[string]any{
							"mimeType": "audio/pcm;rate=24000",
							"data":     base64.StdEncoding.EncodeToString(pcm),
						}},
					},
				},
			},
		})
		_ = conn.WriteJSON(map[string]any{
			"toolCall": map[string]any{
				"functionCalls": []map[string]any{
					{"id": "call-1", "name": "end_call", "args": map[string]any{}},
				},
			},
		})
		_ = conn.WriteJSON(map[string]any{
			"serverContent": map[string]any{"interrupted": true},
		})
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(2*time.Second))
	})
	defer closeServer()

	session, err := Connect(context.Background(), slog.Default(), testOptions(serverURL))
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer session.Close()

	var got []Event
	deadline := time.After(5 * time.Second)
	for len(got) < 4 {
		select {
		case event, ok := <-session.Events():
			if !ok {
				t.Fatalf("events channel closed early, got %d events", len(got))
			}
			got = append(got, event)
		case <-deadline:
			t.Fatalf("timed out waiting for events, got %d", len(got))
		}
	}

	audio, ok := got[0].(AudioEvent)
	if !ok {
		t.Fatalf("event[0] = %T, want AudioEvent", got[0])
	}
	if string(audio.Data) != string(pcm) {
		t.Errorf("audio data = %v, want %v", audio.Data, pcm)
	}

	call, ok := got[1].(ToolCallEvent)
	if !ok {
		t.Fatalf("event[1] = %T, want ToolCallEvent", got[1])
	}
	if call.ID != "call-1" || call.Name != "end_call" {
		t.Errorf("tool call = %+v", call)
	}

	if _, ok := got[2].(InterruptedEvent); !ok {
		t.Fatalf("event[2] = %T, want InterruptedEvent", got[2])
	}
	if _, ok := got[3].(ClosedEvent); !ok {
		t.Fatalf("event[3] = %T, want ClosedEvent", got[3])
	}
}

func TestSendAfterCloseFails(t *testing.T) {
	t.Parallel()

	serverURL, closeServer := newWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		var setup setupMessage
		_ = conn.ReadJSON(&setup)
		_ = conn.WriteJSON(map[string]any{"setupComplete": map[string]any{}})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer closeServer()

	session, err := Connect(context.Background(), slog.Default(), testOptions(serverURL))
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := session.SendAudioFrame([]byte{0x00, 0x01}, 16000); err != nil {
		t.Fatalf("SendAudioFrame before close: %v", err)
	}

	if err := session.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := session.SendAudioFrame([]byte{0x00, 0x01}, 16000); err == nil {
		t.Fatal("expected error sending on closed session")
	}
}

func TestOutboundInstructionAppendsContext(t *testing.T) {
	appt := registry.Appointment{ID: "101", PatientName: "Ahmed Khan", DateTime: "Tomorrow at 10:00 AM"}
	got := OutboundInstruction(appt)
	if !strings.HasPrefix(got, SystemInstruction) {
		t.Error("outbound instruction does not start with the base instruction")
	}
	if !strings.Contains(got, "[CONTEXT: Calling Ahmed Khan. ID: 101. Time: Tomorrow at 10:00 AM]") {
		t.Errorf("missing context block in %q", got)
	}
}
