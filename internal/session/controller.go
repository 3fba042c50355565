package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/muhammaduzair11/SehatAI/internal/audio"
	"github.com/muhammaduzair11/SehatAI/internal/config"
	"github.com/muhammaduzair11/SehatAI/internal/dialogue"
	"github.com/muhammaduzair11/SehatAI/internal/metrics"
	"github.com/muhammaduzair11/SehatAI/internal/registry"
	"github.com/muhammaduzair11/SehatAI/internal/remote"
	"github.com/muhammaduzair11/SehatAI/internal/speech"
	"github.com/muhammaduzair11/SehatAI/internal/tools"
)

// State is the connection state of the call session.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateError
)

// String returns a human-readable state name
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Mode selects the call direction.
type Mode int

const (
	ModeInbound Mode = iota
	ModeOutbound
)

// String returns a human-readable mode name
func (m Mode) String() string {
	if m == ModeOutbound {
		return "outbound"
	}
	return "inbound"
}

// LogEntry is one line of the session event log consumed by the HTTP layer.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}

const maxLogEntries = 256

// outboundTriggerDelay stabilizes the remote channel before the greeting
// trigger is injected.
const outboundTriggerDelay = 500 * time.Millisecond

// RemotePeer is the streaming connection surface the controller drives in
// remote mode.
type RemotePeer interface {
	Events() <-chan remote.Event
	SendAudioFrame(pcm []byte, sampleRate int) error
	SendText(text string) error
	SendToolResponse(responses ...remote.FunctionResponse) error
	Close() error
}

// RemoteDialer opens a remote session. Injectable for tests.
type RemoteDialer func(ctx context.Context, logger *slog.Logger, opts remote.ConnectOptions) (RemotePeer, error)

// Deps bundles the external collaborators a controller drives.
type Deps struct {
	Devices audio.DeviceOpener
	Speech  speech.Factory

	// DialRemote defaults to the production websocket client.
	DialRemote RemoteDialer

	// Clock defaults to time.Now.
	Clock audio.Clock
}

// Controller manages one call session at a time.
type Controller struct {
	logger     *slog.Logger
	cfg        *config.Config
	metrics    *metrics.Metrics
	store      *registry.Store
	dispatcher *tools.Dispatcher

	devices    audio.DeviceOpener
	speech     speech.Factory
	dialRemote RemoteDialer
	clock      audio.Clock

	mu          sync.RWMutex
	state       State
	mode        Mode
	startedAt   time.Time
	showResults bool

	meter      *audio.Meter
	scheduler  *audio.Scheduler
	input      audio.InputDevice
	output     audio.OutputDevice
	peer       RemotePeer
	recognizer speech.Recognizer
	graceTimer *time.Timer

	sessionCtx    context.Context
	sessionCancel context.CancelFunc
	wg            sync.WaitGroup

	logMu   sync.Mutex
	entries []LogEntry
}

// NewController creates a session controller. The tool dispatcher is owned
// by the controller so end_call can route into the teardown path.
func NewController(logger *slog.Logger, cfg *config.Config, m *metrics.Metrics, store *registry.Store, deps Deps) *Controller {
	c := &Controller{
		logger:     logger,
		cfg:        cfg,
		metrics:    m,
		store:      store,
		devices:    deps.Devices,
		speech:     deps.Speech,
		dialRemote: deps.DialRemote,
		clock:      deps.Clock,
		meter:      audio.NewMeter(),
		state:      StateDisconnected,
	}
	if c.dialRemote == nil {
		c.dialRemote = func(ctx context.Context, logger *slog.Logger, opts remote.ConnectOptions) (RemotePeer, error) {
			return remote.Connect(ctx, logger, opts)
		}
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	c.dispatcher = tools.NewDispatcher(store, logger, m, c.onEndCall)
	return c
}

// State returns the current connection state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Mode returns the direction of the current or most recent session.
func (c *Controller) Mode() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// VolumeLevel returns the live input level, 0-100 while connected and 0
// otherwise.
func (c *Controller) VolumeLevel() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state != StateConnected {
		return 0
	}
	return c.meter.Level()
}

// Uptime returns how long the current session has been connected,
// zero while disconnected.
func (c *Controller) Uptime() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state != StateConnected {
		return 0
	}
	return time.Since(c.startedAt)
}

// ShowResults reports whether the last completed session mutated
// appointment data.
func (c *Controller) ShowResults() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.showResults
}

// LogEntries returns a snapshot of the session event log.
func (c *Controller) LogEntries() []LogEntry {
	c.logMu.Lock()
	defer c.logMu.Unlock()
	out := make([]LogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Connect starts a new call session. It is valid only from the
// disconnected and error states. Outbound mode requires the ID of an
// existing appointment; a missing or unknown target fails without any
// state change.
func (c *Controller) Connect(ctx context.Context, mode Mode, targetID string) error {
	var target registry.Appointment
	if mode == ModeOutbound {
		if targetID == "" {
			return fmt.Errorf("outbound call requires a target appointment")
		}
		appt, ok := c.store.Find(targetID)
		if !ok {
			return fmt.Errorf("outbound call target %q not found", targetID)
		}
		target = appt
	}

	c.mu.Lock()
	if c.state != StateDisconnected && c.state != StateError {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("cannot connect from state %s", state)
	}
	c.state = StateConnecting
	c.mode = mode
	c.showResults = false
	c.sessionCtx, c.sessionCancel = context.WithCancel(context.Background())
	sessionCtx := c.sessionCtx
	c.mu.Unlock()

	c.appendLog("info", fmt.Sprintf("Connecting (%s)...", mode))
	c.logger.Info("Session connecting",
		slog.String("mode", mode.String()),
		slog.String("target_id", targetID),
	)

	input, err := c.devices.OpenInput(sessionCtx)
	if err != nil {
		return c.fail(fmt.Errorf("open input device: %w", err))
	}

	output, err := c.devices.OpenOutput(sessionCtx, c.cfg.Audio.OutputSampleRate)
	if err != nil {
		_ = input.Close()
		return c.fail(fmt.Errorf("open output device: %w", err))
	}

	c.mu.Lock()
	c.input = input
	c.output = output
	c.scheduler = audio.NewScheduler(output, c.clock)
	c.meter.Reset()
	c.mu.Unlock()

	c.dispatcher.ResetSession()

	if c.cfg.Remote.Enabled() {
		err = c.startRemote(sessionCtx, mode, target)
	} else {
		err = c.startLocal(sessionCtx, mode, target)
	}
	if err != nil {
		_ = input.Close()
		_ = output.Close()
		return c.fail(err)
	}

	c.mu.Lock()
	c.state = StateConnected
	c.startedAt = time.Now()
	c.mu.Unlock()

	c.metrics.SessionsStarted.Inc()
	c.metrics.ActiveSessions.Inc()
	c.appendLog("info", "Connected. Listening...")
	c.logger.Info("Session connected", slog.String("mode", mode.String()))
	return nil
}

// Disconnect tears the session down. It is idempotent and safe from any
// state, including mid-connect failures.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	if c.state == StateDisconnected {
		c.mu.Unlock()
		return
	}
	wasConnected := c.state == StateConnected
	startedAt := c.startedAt
	c.state = StateDisconnected

	input := c.input
	output := c.output
	peer := c.peer
	recognizer := c.recognizer
	scheduler := c.scheduler
	timer := c.graceTimer
	cancel := c.sessionCancel

	c.input = nil
	c.output = nil
	c.peer = nil
	c.recognizer = nil
	c.scheduler = nil
	c.graceTimer = nil
	c.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if cancel != nil {
		cancel()
	}
	if recognizer != nil {
		recognizer.Stop()
		_ = recognizer.Close()
	}
	if peer != nil {
		_ = peer.Close()
	}
	if scheduler != nil {
		scheduler.Flush()
	}
	if input != nil {
		_ = input.Close()
	}
	if output != nil {
		_ = output.Close()
	}

	c.wg.Wait()
	c.meter.Reset()

	if wasConnected {
		c.metrics.ActiveSessions.Dec()
		c.metrics.SessionDuration.Observe(time.Since(startedAt).Seconds())
	}

	c.appendLog("info", "Disconnected")
	c.logger.Info("Session disconnected")
}

// startRemote wires the session to the hosted assistant over websocket.
func (c *Controller) startRemote(ctx context.Context, mode Mode, target registry.Appointment) error {
	instruction := remote.SystemInstruction
	if mode == ModeOutbound {
		instruction = remote.OutboundInstruction(target)
	}

	peer, err := c.dialRemote(ctx, c.logger, remote.ConnectOptions{
		Endpoint:          c.cfg.Remote.Endpoint,
		APIKey:            c.cfg.Remote.APIKey,
		Model:             c.cfg.Remote.Model,
		Voice:             c.cfg.Remote.Voice,
		SystemInstruction: instruction,
		ConnectTimeout:    c.cfg.Remote.GetConnectTimeout(),
	})
	if err != nil {
		return fmt.Errorf("connect remote peer: %w", err)
	}

	c.mu.Lock()
	c.peer = peer
	input := c.input
	c.mu.Unlock()

	c.wg.Add(2)
	go c.remoteCaptureLoop(input, peer)
	go c.remoteEventLoop(peer)

	if mode == ModeOutbound {
		time.AfterFunc(outboundTriggerDelay, func() {
			if ctx.Err() != nil {
				return
			}
			if err := peer.SendText("Start conversation now."); err != nil {
				c.logger.Warn("Failed to send outbound trigger", slog.String("error", err.Error()))
			}
		})
	}
	return nil
}

// remoteCaptureLoop streams captured frames to the peer until the device
// channel closes.
func (c *Controller) remoteCaptureLoop(input audio.InputDevice, peer RemotePeer) {
	defer c.wg.Done()

	rate := input.SampleRate()
	for frame := range input.Frames() {
		c.meter.Update(frame)
		c.metrics.FramesCaptured.Inc()

		pcm := audio.Int16ToBytes(audio.Float32ToInt16(frame))
		if err := peer.SendAudioFrame(pcm, rate); err != nil {
			c.logger.Warn("Failed to send audio frame", slog.String("error", err.Error()))
			return
		}
	}

	// Channel closed: either normal teardown or mid-session device loss.
	if c.State() != StateDisconnected {
		c.logger.Warn("Input device lost, tearing session down")
		go c.Disconnect()
	}
}

// remoteEventLoop consumes peer events until the connection ends.
func (c *Controller) remoteEventLoop(peer RemotePeer) {
	defer c.wg.Done()

	outputRate := c.cfg.Audio.OutputSampleRate
	for event := range peer.Events() {
		switch e := event.(type) {
		case remote.AudioEvent:
			samples, err := audio.BytesToInt16(e.Data)
			if err != nil {
				c.logger.Warn("Dropping malformed audio chunk", slog.String("error", err.Error()))
				continue
			}
			c.mu.RLock()
			scheduler := c.scheduler
			c.mu.RUnlock()
			if scheduler != nil {
				scheduler.Schedule(audio.Int16ToFloat32(samples), outputRate)
				c.metrics.BuffersScheduled.Inc()
			}

		case remote.ToolCallEvent:
			c.handleRemoteToolCall(peer, e)

		case remote.InterruptedEvent:
			c.mu.RLock()
			scheduler := c.scheduler
			c.mu.RUnlock()
			if scheduler != nil {
				flushed := scheduler.Flush()
				c.metrics.BuffersFlushed.Add(float64(flushed))
			}
			c.metrics.Interruptions.Inc()
			c.appendLog("info", "Interruption")

		case remote.ClosedEvent:
			if e.Err != nil {
				c.appendLog("error", fmt.Sprintf("Connection error: %v", e.Err))
				c.logger.Error("Remote session failed", slog.String("error", e.Err.Error()))
			}
			go c.Disconnect()
		}
	}
}

func (c *Controller) handleRemoteToolCall(peer RemotePeer, call remote.ToolCallEvent) {
	c.appendLog("tool", fmt.Sprintf("Tool call: %s", call.Name))

	result := c.dispatcher.Dispatch(context.Background(), call.Name, call.Args)

	response := map[string]any{}
	if result.Success {
		response["result"] = result.Data
	} else {
		response["error"] = result.Error
	}
	if err := peer.SendToolResponse(remote.FunctionResponse{
		ID:       call.ID,
		Name:     call.Name,
		Response: response,
	}); err != nil {
		c.logger.Warn("Failed to send tool response",
			slog.String("tool", call.Name),
			slog.String("error", err.Error()),
		)
	}
}

// startLocal wires the session to the on-device dialogue engine.
func (c *Controller) startLocal(ctx context.Context, mode Mode, target registry.Appointment) error {
	recognizer, err := c.speech.NewRecognizer(ctx, c.cfg.Dialogue.Language)
	if err != nil {
		return fmt.Errorf("acquire recognizer: %w", err)
	}

	synthesizer, err := c.speech.NewSynthesizer(ctx, c.cfg.Dialogue.Language)
	if err != nil {
		_ = recognizer.Close()
		return fmt.Errorf("acquire synthesizer: %w", err)
	}

	gate := speech.NewGate()
	speaker := func(ctx context.Context, text string) error {
		if !gate.BeginSpeaking() {
			return fmt.Errorf("synthesis already in progress")
		}
		recognizer.Stop()
		err := synthesizer.Speak(ctx, text)
		gate.EndSpeaking()
		recognizer.Start()
		return err
	}

	var engine *dialogue.Engine
	if mode == ModeOutbound {
		engine = dialogue.NewOutbound(c.logger, speaker, c.dispatcher, c.metrics, target)
	} else {
		engine = dialogue.NewInbound(c.logger, speaker, c.dispatcher, c.metrics, c.cfg.Dialogue.MinPhoneDigits)
	}

	c.mu.Lock()
	c.recognizer = recognizer
	input := c.input
	c.mu.Unlock()

	c.wg.Add(2)
	go c.localMeterLoop(input)
	go c.localUtteranceLoop(ctx, recognizer, engine)

	recognizer.Start()
	go func() {
		if err := engine.Greet(ctx); err != nil {
			c.logger.Warn("Greeting failed", slog.String("error", err.Error()))
		}
	}()
	return nil
}

// localMeterLoop keeps the volume meter fed while the local pipeline runs.
func (c *Controller) localMeterLoop(input audio.InputDevice) {
	defer c.wg.Done()

	for frame := range input.Frames() {
		c.meter.Update(frame)
		c.metrics.FramesCaptured.Inc()
	}

	if c.State() != StateDisconnected {
		c.logger.Warn("Input device lost, tearing session down")
		go c.Disconnect()
	}
}

// localUtteranceLoop feeds final transcripts into the dialogue engine.
func (c *Controller) localUtteranceLoop(ctx context.Context, recognizer speech.Recognizer, engine *dialogue.Engine) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case transcript, ok := <-recognizer.Results():
			if !ok {
				return
			}
			c.appendLog("info", fmt.Sprintf("Heard: %s", transcript))
			engine.HandleUtterance(ctx, transcript)
		}
	}
}

// onEndCall is invoked by the tool dispatcher. Teardown is deferred by the
// grace delay so the closing utterance can finish playing.
func (c *Controller) onEndCall(mutated bool) {
	grace := c.cfg.Dialogue.GetEndCallGrace()

	c.mu.Lock()
	c.showResults = mutated
	if c.graceTimer != nil {
		c.graceTimer.Stop()
	}
	c.graceTimer = time.AfterFunc(grace, c.Disconnect)
	c.mu.Unlock()

	c.appendLog("info", "Call ending...")
	c.logger.Info("End of call requested",
		slog.Bool("mutated", mutated),
		slog.Duration("grace", grace),
	)
}

// fail transitions to the error state after a mid-connect failure.
func (c *Controller) fail(err error) error {
	c.mu.Lock()
	c.state = StateError
	cancel := c.sessionCancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	c.metrics.SessionsFailed.Inc()
	c.appendLog("error", fmt.Sprintf("Connection error: %v", err))
	c.logger.Error("Session connect failed", slog.String("error", err.Error()))
	return err
}

func (c *Controller) appendLog(level, message string) {
	c.logMu.Lock()
	defer c.logMu.Unlock()
	c.entries = append(c.entries, LogEntry{Time: time.Now(), Level: level, Message: message})
	if len(c.entries) > maxLogEntries {
		c.entries = c.entries[len(c.entries)-maxLogEntries:]
	}
}
