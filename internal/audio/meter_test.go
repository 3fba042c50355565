package audio

import "testing"

func TestMeterSilence(t *testing.T) {
	meter := NewMeter()
	level := meter.Update(make([]float32, 1024))
	if level != 0 {
		t.Errorf("Expected level 0 for silence, got %d", level)
	}
}

func TestMeterCapsAt100(t *testing.T) {
	meter := NewMeter()
	loud := make([]float32, 1024)
	for i := range loud {
		loud[i] = 1
	}
	level := meter.Update(loud)
	if level != 100 {
		t.Errorf("Expected level capped at 100, got %d", level)
	}
}

func TestMeterScaling(t *testing.T) {
	meter := NewMeter()
	frame := make([]float32, 1024)
	for i := range frame {
		frame[i] = 0.1
	}
	// RMS of a constant 0.1 signal is 0.1, scaled by 200 -> 20.
	level := meter.Update(frame)
	if level != 20 {
		t.Errorf("Expected level 20, got %d", level)
	}
	if meter.Level() != 20 {
		t.Errorf("Expected stored level 20, got %d", meter.Level())
	}
}

func TestMeterReset(t *testing.T) {
	meter := NewMeter()
	frame := make([]float32, 64)
	for i := range frame {
		frame[i] = 0.5
	}
	meter.Update(frame)
	meter.Reset()
	if meter.Level() != 0 {
		t.Errorf("Expected level 0 after reset, got %d", meter.Level())
	}
}

func TestMeterEmptyFrame(t *testing.T) {
	meter := NewMeter()
	frame := make([]float32, 64)
	for i := range frame {
		frame[i] = 0.25
	}
	before := meter.Update(frame)
	after := meter.Update(nil)
	if after != before {
		t.Errorf("Expected empty frame to leave level at %d, got %d", before, after)
	}
}
