package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/muhammaduzair11/SehatAI/internal/metrics"
	"github.com/muhammaduzair11/SehatAI/internal/registry"
)

// Tool names accepted by the dispatcher.
const (
	ToolBookAppointment = "book_appointment"
	ToolConfirmReminder = "confirm_reminder"
	ToolEndCall         = "end_call"
)

// Defaults substituted for missing book_appointment arguments.
const (
	defaultPatientName = "Guest Patient"
	defaultPhoneNumber = "No Number"
	defaultDateTime    = "Upcoming"
)

// Result is the structured outcome of one tool call.
type Result struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// EndCallFunc is invoked when end_call is dispatched. The mutated flag
// reports whether any tool call in this session changed appointment data,
// so teardown can signal "show results" to the presentation layer.
type EndCallFunc func(mutated bool)

// Dispatcher executes structured tool calls against the appointment registry.
type Dispatcher struct {
	store     *registry.Store
	logger    *slog.Logger
	metrics   *metrics.Metrics
	onEndCall EndCallFunc

	mutated bool
	mu      sync.Mutex
}

// NewDispatcher creates a tool dispatcher. The metrics argument may be nil.
func NewDispatcher(store *registry.Store, logger *slog.Logger, m *metrics.Metrics, onEndCall EndCallFunc) *Dispatcher {
	return &Dispatcher{
		store:     store,
		logger:    logger,
		metrics:   m,
		onEndCall: onEndCall,
	}
}

// ResetSession clears per-session state before a new call begins.
func (d *Dispatcher) ResetSession() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mutated = false
}

// Mutated reports whether any tool call changed appointment data this session.
func (d *Dispatcher) Mutated() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mutated
}

// Dispatch executes the named tool with the given arguments. It always
// returns a Result: execution faults are caught here and converted to
// structured failures rather than propagated.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) (result Result) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Tool execution panicked",
				slog.String("tool", name),
				slog.Any("panic", r),
			)
			result = Result{Success: false, Error: "internal error"}
		}
		d.observe(name, result, time.Since(start))
	}()

	d.logger.Info("Dispatching tool call", slog.String("tool", name))

	if args == nil {
		args = map[string]any{}
	}

	switch name {
	case ToolBookAppointment:
		return d.bookAppointment(args)
	case ToolConfirmReminder:
		return d.confirmReminder(args)
	case ToolEndCall:
		return d.endCall()
	default:
		d.logger.Warn("Unknown tool requested", slog.String("tool", name))
		return Result{Success: false, Error: fmt.Sprintf("unknown tool: %s", name)}
	}
}

// bookAppointment creates a new appointment record. It always succeeds;
// missing arguments fall back to sentinel defaults.
func (d *Dispatcher) bookAppointment(args map[string]any) Result {
	name := stringArg(args, "patientName", defaultPatientName)
	phone := stringArg(args, "phoneNumber", defaultPhoneNumber)
	dateTime := stringArg(args, "dateTime", defaultDateTime)
	isNew := boolArg(args, "isNewPatient")

	cleanName := capitalizeWords(name)

	appt := d.store.Insert(registry.Appointment{
		PatientName:  cleanName,
		PhoneNumber:  phone,
		IsNewPatient: isNew,
		DateTime:     dateTime,
		Status:       registry.StatusBooked,
	})

	d.markMutated()

	d.logger.Info("Appointment booked",
		slog.String("appointment_id", appt.ID),
		slog.String("patient_name", cleanName),
		slog.String("date_time", dateTime),
		slog.Bool("is_new_patient", isNew),
	)

	return Result{
		Success: true,
		Data:    map[string]any{"appointmentId": appt.ID},
	}
}

// confirmReminder updates an appointment's status by ID, falling back to a
// case-insensitive name substring match when the peer supplied a wrong ID.
func (d *Dispatcher) confirmReminder(args map[string]any) Result {
	id := stringArg(args, "appointmentId", "")
	name := stringArg(args, "patientName", "")
	confirmed := boolArg(args, "confirmed")

	target, found := d.store.Find(id)
	if !found && name != "" {
		target, found = d.store.FindByNameSubstring(name)
		if found {
			d.logger.Warn("Appointment ID mismatch, recovered via name match",
				slog.String("requested_id", id),
				slog.String("matched_id", target.ID),
				slog.String("patient_name", target.PatientName),
			)
		}
	}

	if !found {
		d.logger.Error("Failed to find appointment",
			slog.String("appointment_id", id),
			slog.String("patient_name", name),
		)
		return Result{Success: false, Error: "appointment not found"}
	}

	status := registry.StatusCancelled
	if confirmed {
		status = registry.StatusConfirmed
	}
	d.store.SetStatus(target.ID, status)
	d.markMutated()

	d.logger.Info("Appointment status updated",
		slog.String("appointment_id", target.ID),
		slog.String("patient_name", target.PatientName),
		slog.String("status", string(status)),
	)

	return Result{
		Success: true,
		Data:    map[string]any{"status": string(status)},
	}
}

// endCall requests session teardown. The session owner schedules the actual
// disconnect after a grace delay so the closing utterance can finish.
func (d *Dispatcher) endCall() Result {
	d.logger.Info("Call completion requested")

	if d.onEndCall != nil {
		d.onEndCall(d.Mutated())
	}

	return Result{Success: true}
}

func (d *Dispatcher) markMutated() {
	d.mu.Lock()
	d.mutated = true
	d.mu.Unlock()
}

func (d *Dispatcher) observe(name string, result Result, elapsed time.Duration) {
	if d.metrics == nil {
		return
	}
	outcome := "success"
	if !result.Success {
		outcome = "failure"
	}
	d.metrics.ToolCalls.WithLabelValues(name, outcome).Inc()
	d.metrics.ToolCallDuration.Observe(elapsed.Seconds())
}

// stringArg extracts a trimmed string argument, substituting def when the
// value is missing or blank.
func stringArg(args map[string]any, key, def string) string {
	value, ok := args[key]
	if !ok || value == nil {
		return def
	}
	s := strings.TrimSpace(fmt.Sprintf("%v", value))
	if s == "" {
		return def
	}
	return s
}

// boolArg extracts a boolean argument, accepting both booleans and the
// string "true" in any case. Anything else is false.
func boolArg(args map[string]any, key string) bool {
	value, ok := args[key]
	if !ok || value == nil {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	default:
		return strings.EqualFold(strings.TrimSpace(fmt.Sprintf("%v", v)), "true")
	}
}

// capitalizeWords uppercases the first letter of each word, leaving the rest
// of the word untouched.
func capitalizeWords(text string) string {
	words := strings.Fields(text)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
