package audio

import (
	"encoding/base64"
	"fmt"
	"math"
)

// Float32ToInt16 converts floating-point samples in [-1, 1] to 16-bit signed
// PCM. Samples are clipped symmetrically and rounded to the nearest integer;
// negative values scale by 32768 and positive values by 32767, matching the
// asymmetric range of int16.
func Float32ToInt16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		if s < -1 {
			s = -1
		} else if s > 1 {
			s = 1
		}
		if s < 0 {
			out[i] = int16(math.Round(float64(s) * 32768))
		} else {
			out[i] = int16(math.Round(float64(s) * 32767))
		}
	}
	return out
}

// Int16ToFloat32 converts 16-bit signed PCM samples back to floating-point.
// Negative values divide by 32768 and positive values by 32767, the inverse
// of Float32ToInt16.
func Int16ToFloat32(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		if s < 0 {
			out[i] = float32(s) / 32768
		} else {
			out[i] = float32(s) / 32767
		}
	}
	return out
}

// Int16ToBytes serializes samples as little-endian PCM bytes.
func Int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}

// BytesToInt16 reinterprets little-endian PCM bytes as samples.
func BytesToInt16(data []byte) ([]int16, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("pcm data length must be even (got %d bytes)", len(data))
	}
	out := make([]int16, len(data)/2)
	for i := range out {
		out[i] = int16(data[i*2]) | int16(data[i*2+1])<<8
	}
	return out, nil
}

// EncodeFrame converts a captured float frame to base64-encoded 16-bit PCM
// for transport.
func EncodeFrame(samples []float32) string {
	return base64.StdEncoding.EncodeToString(Int16ToBytes(Float32ToInt16(samples)))
}

// DecodeFrame converts a base64 PCM payload back into float samples.
func DecodeFrame(payload string) ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 audio payload: %w", err)
	}
	samples, err := BytesToInt16(raw)
	if err != nil {
		return nil, err
	}
	return Int16ToFloat32(samples), nil
}

// Resample converts samples between rates using linear interpolation.
// It returns the source slice unchanged when the rates already match.
func Resample(source []float32, sourceRate, targetRate int) []float32 {
	if sourceRate == targetRate || len(source) == 0 {
		return source
	}
	ratio := float64(sourceRate) / float64(targetRate)
	newLength := int(math.Round(float64(len(source)) / ratio))
	result := make([]float32, newLength)
	for i := 0; i < newLength; i++ {
		position := float64(i) * ratio
		index := int(position)
		fraction := float32(position - float64(index))
		if index+1 < len(source) {
			result[i] = source[index]*(1-fraction) + source[index+1]*fraction
		} else if index < len(source) {
			result[i] = source[index]
		}
	}
	return result
}
