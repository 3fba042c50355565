package speech

import "sync"

// GateState is the current side of the listen/speak exclusion.
type GateState int

const (
	GateListening GateState = iota
	GateSpeaking
)

// String returns a human-readable gate state name
func (s GateState) String() string {
	switch s {
	case GateListening:
		return "listening"
	case GateSpeaking:
		return "speaking"
	default:
		return "unknown"
	}
}

// Gate enforces mutual exclusion between recognition and synthesis.
// Recognition is suspended while synthesis is active and resumed only after
// synthesis completes. Transitions are guarded: a second BeginSpeaking while
// already speaking is rejected, which makes the re-entrancy invariant
// observable rather than an incidental flag check.
type Gate struct {
	state GateState
	mu    sync.Mutex
}

// NewGate creates a gate in the listening state.
func NewGate() *Gate {
	return &Gate{state: GateListening}
}

// State returns the current gate state.
func (g *Gate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// BeginSpeaking transitions listening -> speaking. It reports false when the
// gate is already speaking, leaving the state unchanged.
func (g *Gate) BeginSpeaking() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == GateSpeaking {
		return false
	}
	g.state = GateSpeaking
	return true
}

// EndSpeaking transitions speaking -> listening. Safe to call in any state.
func (g *Gate) EndSpeaking() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = GateListening
}

// Speaking reports whether synthesis currently holds the gate.
func (g *Gate) Speaking() bool {
	return g.State() == GateSpeaking
}
