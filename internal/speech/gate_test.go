package speech

import "testing"

func TestGateStartsListening(t *testing.T) {
	gate := NewGate()
	if gate.State() != GateListening {
		t.Errorf("Expected initial state listening, got %s", gate.State())
	}
	if gate.Speaking() {
		t.Error("Expected Speaking() false initially")
	}
}

func TestGateGuardedTransitions(t *testing.T) {
	gate := NewGate()

	if !gate.BeginSpeaking() {
		t.Fatal("Expected first BeginSpeaking to succeed")
	}
	if gate.State() != GateSpeaking {
		t.Errorf("Expected state speaking, got %s", gate.State())
	}

	// Re-entrant speaking is rejected while synthesis is active.
	if gate.BeginSpeaking() {
		t.Error("Expected second BeginSpeaking to be rejected")
	}

	gate.EndSpeaking()
	if gate.State() != GateListening {
		t.Errorf("Expected state listening after EndSpeaking, got %s", gate.State())
	}

	if !gate.BeginSpeaking() {
		t.Error("Expected BeginSpeaking to succeed after EndSpeaking")
	}
}

func TestGateEndSpeakingIdempotent(t *testing.T) {
	gate := NewGate()
	gate.EndSpeaking()
	gate.EndSpeaking()
	if gate.State() != GateListening {
		t.Errorf("Expected state listening, got %s", gate.State())
	}
}

func TestGateStateString(t *testing.T) {
	if GateListening.String() != "listening" {
		t.Errorf("Expected 'listening', got %s", GateListening.String())
	}
	if GateSpeaking.String() != "speaking" {
		t.Errorf("Expected 'speaking', got %s", GateSpeaking.String())
	}
	if GateState(99).String() != "unknown" {
		t.Errorf("Expected 'unknown', got %s", GateState(99).String())
	}
}
