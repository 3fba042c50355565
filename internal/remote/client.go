package remote

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultConnectTimeout = 15 * time.Second
	eventBufferSize       = 256
)

// Event is a decoded server-side occurrence on the session channel.
type Event interface {
	eventType() string
}

// AudioEvent carries one chunk of synthesized PCM, already base64-decoded.
type AudioEvent struct {
	Data []byte
}

func (AudioEvent) eventType() string { return "audio" }

// ToolCallEvent requests execution of a declared tool.
type ToolCallEvent struct {
	ID   string
	Name string
	Args map[string]any
}

func (ToolCallEvent) eventType() string { return "tool_call" }

// InterruptedEvent signals that the peer abandoned its current turn and
// all scheduled playback must be flushed.
type InterruptedEvent struct{}

func (InterruptedEvent) eventType() string { return "interrupted" }

// ClosedEvent is the final event on the channel.
type ClosedEvent struct {
	Err error
}

func (ClosedEvent) eventType() string { return "closed" }

// ConnectOptions configures a session connection.
type ConnectOptions struct {
	Endpoint          string
	APIKey            string
	Model             string
	Voice             string
	SystemInstruction string
	ConnectTimeout    time.Duration
}

// Session is one live websocket connection to the hosted assistant.
type Session struct {
	conn   *websocket.Conn
	logger *slog.Logger

	events chan Event
	done   chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool

	errMu sync.Mutex
	err   error
}

// Connect dials the endpoint, sends the setup message and waits for the
// setup acknowledgement before handing the session back.
func Connect(ctx context.Context, logger *slog.Logger, opts ConnectOptions) (*Session, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("remote endpoint is required")
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("remote API key is required")
	}

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	dialCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	headers := make(http.Header)
	headers.Set("Authorization", "Bearer "+opts.APIKey)

	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, opts.Endpoint, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}

	setup := setupMessage{
		Setup: setupBody{
			Model:             opts.Model,
			SystemInstruction: opts.SystemInstruction,
			Voice:             opts.Voice,
			Tools:             []toolsEntry{{FunctionDeclarations: ToolDeclarations()}},
		},
	}
	if err := conn.WriteJSON(setup); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("send setup: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	var ack serverMessage
	if err := conn.ReadJSON(&ack); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("read setup ack: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})
	if ack.SetupComplete == nil {
		_ = conn.Close()
		return nil, fmt.Errorf("unexpected first frame, want setup ack")
	}

	session := &Session{
		conn:   conn,
		logger: logger,
		events: make(chan Event, eventBufferSize),
		done:   make(chan struct{}),
	}
	go session.readLoop()

	logger.Info("Remote session established",
		slog.String("endpoint", opts.Endpoint),
		slog.String("model", opts.Model),
	)
	return session, nil
}

// Events yields decoded server events. The channel closes after a
// ClosedEvent when the connection ends.
func (s *Session) Events() <-chan Event {
	return s.events
}

// SendAudioFrame streams one captured PCM frame, tagged with its rate.
func (s *Session) SendAudioFrame(pcm []byte, sampleRate int) error {
	return s.sendJSON(realtimeInputMessage{
		RealtimeInput: realtimeInput{
			Media: mediaBlob{
				MimeType: fmt.Sprintf("audio/pcm;rate=%d", sampleRate),
				Data:     base64.StdEncoding.EncodeToString(pcm),
			},
		},
	})
}

// SendText injects a plain-text turn, used to trigger outbound greetings.
func (s *Session) SendText(text string) error {
	return s.sendJSON(realtimeInputMessage{
		RealtimeInput: realtimeInput{
			Media: mediaBlob{
				MimeType: "text/plain",
				Data:     base64.StdEncoding.EncodeToString([]byte(text)),
			},
		},
	})
}

// SendToolResponse answers one or more pending tool calls.
func (s *Session) SendToolResponse(responses ...FunctionResponse) error {
	return s.sendJSON(toolResponseMessage{
		ToolResponse: toolResponseBody{FunctionResponses: responses},
	})
}

func (s *Session) sendJSON(v any) error {
	if s.closed.Load() {
		return fmt.Errorf("remote session is closed")
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

// Close shuts the connection down and waits for the read loop to drain.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(2*time.Second))
		s.writeMu.Unlock()
		_ = s.conn.Close()
	})
	<-s.done
	return nil
}

// Err returns the terminal session error, if any, once the session ends.
func (s *Session) Err() error {
	<-s.done
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *Session) setErr(err error) {
	if err == nil {
		return
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *Session) readLoop() {
	defer close(s.done)
	defer close(s.events)

	for {
		var msg serverMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || s.closed.Load() {
				s.emit(ClosedEvent{})
				return
			}
			s.setErr(err)
			s.emit(ClosedEvent{Err: err})
			return
		}

		if msg.ToolCall != nil {
			for _, call := range msg.ToolCall.FunctionCalls {
				args := map[string]any{}
				if len(call.Args) > 0 {
					if err := json.Unmarshal(call.Args, &args); err != nil {
						s.logger.Warn("Dropping tool call with malformed arguments",
							slog.String("tool", call.Name),
							slog.String("error", err.Error()),
						)
						continue
					}
				}
				s.emit(ToolCallEvent{ID: call.ID, Name: call.Name, Args: args})
			}
		}

		if msg.ServerContent != nil {
			if turn := msg.ServerContent.ModelTurn; turn != nil {
				for _, part := range turn.Parts {
					if part.InlineData == nil || part.InlineData.Data == "" {
						continue
					}
					data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
					if err != nil {
						s.logger.Warn("Dropping undecodable audio chunk",
							slog.String("error", err.Error()),
						)
						continue
					}
					s.emit(AudioEvent{Data: data})
				}
			}
			if msg.ServerContent.Interrupted {
				s.emit(InterruptedEvent{})
			}
		}
	}
}

func (s *Session) emit(event Event) {
	select {
	case s.events <- event:
	default:
		// Do not block the read loop on a stalled consumer.
	}
}
