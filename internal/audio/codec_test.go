package audio

import (
	"math"
	"testing"
)

func TestFloat32ToInt16Scaling(t *testing.T) {
	tests := []struct {
		name     string
		input    float32
		expected int16
	}{
		{"silence", 0, 0},
		{"full negative", -1, -32768},
		{"full positive", 1, 32767},
		{"half negative", -0.5, -16384},
		{"clipped below", -2.5, -32768},
		{"clipped above", 1.5, 32767},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Float32ToInt16([]float32{tt.input})[0]
			if got != tt.expected {
				t.Errorf("Float32ToInt16(%f) = %d, expected %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCodecRoundTrip(t *testing.T) {
	// Round trip must recover every sample within one quantization step.
	samples := make([]float32, 0, 2048)
	for i := 0; i < 2048; i++ {
		samples = append(samples, float32(math.Sin(float64(i)*0.013))*0.97)
	}
	samples = append(samples, -1, 1, 0, -0.0001, 0.0001)

	decoded, err := DecodeFrame(EncodeFrame(samples))
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}

	if len(decoded) != len(samples) {
		t.Fatalf("Expected %d samples, got %d", len(samples), len(decoded))
	}

	tolerance := 1.0 / 32767.0
	for i, original := range samples {
		diff := math.Abs(float64(decoded[i]) - float64(original))
		if diff > tolerance {
			t.Errorf("Sample %d: original %f, decoded %f, diff %f exceeds %f",
				i, original, decoded[i], diff, tolerance)
		}
	}
}

func TestBytesToInt16RejectsOddLength(t *testing.T) {
	if _, err := BytesToInt16([]byte{0x01, 0x02, 0x03}); err == nil {
		t.Error("Expected error for odd-length PCM data")
	}
}

func TestDecodeFrameRejectsInvalidBase64(t *testing.T) {
	if _, err := DecodeFrame("not base64!!!"); err == nil {
		t.Error("Expected error for invalid base64 payload")
	}
}

func TestInt16ByteOrder(t *testing.T) {
	// PCM-16 is little-endian on the wire.
	data := Int16ToBytes([]int16{0x0102})
	if data[0] != 0x02 || data[1] != 0x01 {
		t.Errorf("Expected little-endian bytes [0x02 0x01], got [0x%02x 0x%02x]", data[0], data[1])
	}

	samples, err := BytesToInt16(data)
	if err != nil {
		t.Fatalf("BytesToInt16 failed: %v", err)
	}
	if samples[0] != 0x0102 {
		t.Errorf("Expected sample 0x0102, got 0x%04x", samples[0])
	}
}

func TestResample(t *testing.T) {
	source := []float32{0, 0.5, 1, 0.5, 0, -0.5, -1, -0.5}

	same := Resample(source, 16000, 16000)
	if len(same) != len(source) {
		t.Errorf("Expected unchanged length %d at equal rates, got %d", len(source), len(same))
	}

	up := Resample(source, 8000, 16000)
	if len(up) != 16 {
		t.Errorf("Expected 16 samples after upsampling, got %d", len(up))
	}

	down := Resample(source, 16000, 8000)
	if len(down) != 4 {
		t.Errorf("Expected 4 samples after downsampling, got %d", len(down))
	}
}
