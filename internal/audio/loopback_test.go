package audio

import (
	"context"
	"testing"
	"time"
)

func TestLoopbackInputPacesFrames(t *testing.T) {
	opener := NewLoopbackOpener(16000, 160) // 10ms frames

	input, err := opener.OpenInput(context.Background())
	if err != nil {
		t.Fatalf("OpenInput failed: %v", err)
	}
	defer input.Close()

	if got := input.SampleRate(); got != 16000 {
		t.Errorf("SampleRate = %d, want 16000", got)
	}

	select {
	case frame := <-input.Frames():
		if len(frame) != 160 {
			t.Errorf("frame size = %d, want 160", len(frame))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a frame")
	}
}

func TestLoopbackInputCloseEndsStream(t *testing.T) {
	opener := NewLoopbackOpener(16000, 160)

	input, err := opener.OpenInput(context.Background())
	if err != nil {
		t.Fatalf("OpenInput failed: %v", err)
	}
	if err := input.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := input.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-input.Frames():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("frames channel did not close")
		}
	}
}
