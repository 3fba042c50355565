package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/muhammaduzair11/SehatAI/internal/metrics"
	"github.com/muhammaduzair11/SehatAI/internal/registry"
	"github.com/muhammaduzair11/SehatAI/internal/tools"
)

// Stage identifies the current dialogue turn of a local session.
type Stage int

const (
	StageIdle Stage = iota
	StageCollectName
	StageCollectPhone
	StageCollectIsNew
	StageCollectTime
	StageConfirmDetails
	StageOutboundConfirm
	StageComplete
)

// String returns a human-readable stage name
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageCollectName:
		return "collect_name"
	case StageCollectPhone:
		return "collect_phone"
	case StageCollectIsNew:
		return "collect_new"
	case StageCollectTime:
		return "collect_time"
	case StageConfirmDetails:
		return "confirm_details"
	case StageOutboundConfirm:
		return "outbound_confirm"
	case StageComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Draft is the partially-filled appointment accumulated across turns.
// It is cleared and restarted when the caller rejects a confirmation, and
// promoted to a real appointment only through the tool dispatch bridge.
type Draft struct {
	PatientName  string
	PhoneNumber  string
	IsNewPatient bool
	DateTime     string
}

// Speaker voices a response through the session's gated synthesis path.
type Speaker func(ctx context.Context, text string) error

// Dispatcher is the tool-call surface the engine converges on.
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, args map[string]any) tools.Result
}

// Engine drives a multi-turn conversation over recognized utterances.
// All state is session-scoped and owned by the engine; utterances are
// processed one at a time in delivery order, and input arriving while a
// tool call is pending is dropped.
type Engine struct {
	logger         *slog.Logger
	speak          Speaker
	dispatcher     Dispatcher
	metrics        *metrics.Metrics
	minPhoneDigits int

	outbound bool
	context  registry.Appointment

	stage Stage
	draft Draft
	busy  bool
	mu    sync.Mutex
}

// NewInbound creates an engine for a patient-initiated booking call.
func NewInbound(logger *slog.Logger, speak Speaker, dispatcher Dispatcher, m *metrics.Metrics, minPhoneDigits int) *Engine {
	return &Engine{
		logger:         logger,
		speak:          speak,
		dispatcher:     dispatcher,
		metrics:        m,
		minPhoneDigits: minPhoneDigits,
		stage:          StageCollectName,
	}
}

// NewOutbound creates an engine for a clinic-initiated reminder call.
// contextData is the immutable appointment snapshot supplied at connect.
func NewOutbound(logger *slog.Logger, speak Speaker, dispatcher Dispatcher, m *metrics.Metrics, contextData registry.Appointment) *Engine {
	return &Engine{
		logger:     logger,
		speak:      speak,
		dispatcher: dispatcher,
		metrics:    m,
		outbound:   true,
		context:    contextData,
		stage:      StageOutboundConfirm,
	}
}

// Stage returns the current dialogue stage.
func (e *Engine) Stage() Stage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stage
}

// Draft returns a copy of the collected draft.
func (e *Engine) Draft() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// Greet speaks the opening utterances for the call.
func (e *Engine) Greet(ctx context.Context) error {
	if e.outbound {
		return e.speak(ctx, fmt.Sprintf(promptOutboundGreetingFormat, e.context.PatientName, e.context.DateTime))
	}
	if err := e.speak(ctx, promptInboundGreeting); err != nil {
		return err
	}
	return e.speak(ctx, promptAskName)
}

// HandleUtterance processes one final transcript through the stage machine:
// normalize, interpret per the current stage, speak a response, advance the
// stage or re-prompt.
func (e *Engine) HandleUtterance(ctx context.Context, transcript string) {
	normalized := Normalize(transcript)
	if normalized == "" {
		return
	}

	e.mu.Lock()
	if e.busy || e.stage == StageComplete || e.stage == StageIdle {
		e.mu.Unlock()
		e.logger.Debug("Dropping utterance outside an active turn",
			slog.String("stage", e.stage.String()),
		)
		return
	}
	stage := e.stage
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.TranscriptsProcessed.Inc()
	}

	e.logger.Info("Processing utterance",
		slog.String("stage", stage.String()),
		slog.String("transcript", transcript),
	)

	if e.outbound {
		e.handleOutboundConfirm(ctx, normalized)
		return
	}

	switch stage {
	case StageCollectName:
		e.handleCollectName(ctx, transcript)
	case StageCollectPhone:
		e.handleCollectPhone(ctx, transcript)
	case StageCollectIsNew:
		e.handleCollectIsNew(ctx, normalized)
	case StageCollectTime:
		e.handleCollectTime(ctx, transcript)
	case StageConfirmDetails:
		e.handleConfirmDetails(ctx, normalized)
	}
}

func (e *Engine) handleCollectName(ctx context.Context, transcript string) {
	name := ExtractName(transcript)
	e.setStage(StageCollectPhone, func(d *Draft) { d.PatientName = name })
	_ = e.speak(ctx, promptAskPhone)
}

func (e *Engine) handleCollectPhone(ctx context.Context, transcript string) {
	phone := ExtractPhone(transcript, e.minPhoneDigits)
	if phone == "" {
		e.reprompt(ctx, promptRepeatPhone)
		return
	}
	e.setStage(StageCollectIsNew, func(d *Draft) { d.PhoneNumber = phone })
	_ = e.speak(ctx, promptAskIsNew)
}

func (e *Engine) handleCollectIsNew(ctx context.Context, normalized string) {
	answer := DetectYesNo(normalized)
	if answer == AnswerAmbiguous {
		e.reprompt(ctx, promptRepeatYesNo)
		return
	}
	e.setStage(StageCollectTime, func(d *Draft) { d.IsNewPatient = answer == AnswerYes })
	_ = e.speak(ctx, promptAskTime)
}

func (e *Engine) handleCollectTime(ctx context.Context, transcript string) {
	dateTime := ExtractDateTime(transcript)
	if dateTime == "" {
		e.reprompt(ctx, promptRepeatTime)
		return
	}
	e.setStage(StageConfirmDetails, func(d *Draft) { d.DateTime = dateTime })

	draft := e.Draft()
	_ = e.speak(ctx, fmt.Sprintf(promptConfirmFormat, draft.PatientName, draft.PhoneNumber, draft.DateTime))
}

func (e *Engine) handleConfirmDetails(ctx context.Context, normalized string) {
	answer := DetectYesNo(normalized)
	if answer == AnswerAmbiguous {
		e.reprompt(ctx, promptRepeatConfirm)
		return
	}

	if answer == AnswerNo {
		// Rejected confirmation restarts collection from scratch.
		e.mu.Lock()
		e.draft = Draft{}
		e.stage = StageCollectName
		e.mu.Unlock()
		_ = e.speak(ctx, promptRestartName)
		return
	}

	draft := e.Draft()
	e.setBusy(true)

	e.dispatcher.Dispatch(ctx, tools.ToolBookAppointment, map[string]any{
		"patientName":  orDefault(draft.PatientName, "Guest Patient"),
		"phoneNumber":  orDefault(draft.PhoneNumber, "No Number"),
		"isNewPatient": draft.IsNewPatient,
		"dateTime":     orDefault(draft.DateTime, "Upcoming"),
	})

	// The booking tool has resolved; only now is the confirmation voiced.
	_ = e.speak(ctx, promptBookedGoodbye)
	e.dispatcher.Dispatch(ctx, tools.ToolEndCall, nil)

	e.mu.Lock()
	e.stage = StageComplete
	e.busy = false
	e.mu.Unlock()
}

func (e *Engine) handleOutboundConfirm(ctx context.Context, normalized string) {
	answer := DetectYesNo(normalized)
	if answer == AnswerAmbiguous {
		e.reprompt(ctx, promptRepeatOutbound)
		return
	}

	e.setBusy(true)

	e.dispatcher.Dispatch(ctx, tools.ToolConfirmReminder, map[string]any{
		"appointmentId": e.context.ID,
		"patientName":   e.context.PatientName,
		"confirmed":     answer == AnswerYes,
	})

	_ = e.speak(ctx, promptUpdatedGoodbye)
	e.dispatcher.Dispatch(ctx, tools.ToolEndCall, nil)

	e.mu.Lock()
	e.stage = StageComplete
	e.busy = false
	e.mu.Unlock()
}

func (e *Engine) reprompt(ctx context.Context, prompt string) {
	if e.metrics != nil {
		e.metrics.Reprompts.Inc()
	}
	_ = e.speak(ctx, prompt)
}

func (e *Engine) setStage(stage Stage, update func(*Draft)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if update != nil {
		update(&e.draft)
	}
	e.stage = stage
}

func (e *Engine) setBusy(busy bool) {
	e.mu.Lock()
	e.busy = busy
	e.mu.Unlock()
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
