package speech

import "context"

// Synthesizer speaks text in the configured locale. Speak blocks until the
// utterance has finished playing or ctx is cancelled.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}

// Recognizer produces final transcripts from the live input signal.
// Start and Stop are idempotent and exception-safe: failures are swallowed,
// not surfaced, so callers can re-arm recognition without guarding. Results
// yields final transcripts until Close; the sequence is restartable across
// Stop/Start cycles.
type Recognizer interface {
	Start()
	Stop()
	Results() <-chan string
	Close() error
}

// Factory acquires a recognizer/synthesizer pair for a session. Acquisition
// failure is fatal to the connecting session.
type Factory interface {
	NewRecognizer(ctx context.Context, language string) (Recognizer, error)
	NewSynthesizer(ctx context.Context, language string) (Synthesizer, error)
}
