package audio

import (
	"math"
	"sync/atomic"
)

// Meter computes the input volume level from live capture frames. The level
// is the root-mean-square of sample amplitudes scaled into an integer
// percentage. Update runs on the capture path, so the level is stored
// atomically and reads never block encoding or transmission.
type Meter struct {
	level atomic.Int32
}

// NewMeter creates a volume meter reading zero.
func NewMeter() *Meter {
	return &Meter{}
}

// Update recomputes the level from one capture frame and returns it.
func (m *Meter) Update(samples []float32) int {
	if len(samples) == 0 {
		return int(m.level.Load())
	}

	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	rms := math.Sqrt(sum / float64(len(samples)))

	level := int(math.Round(rms * 200))
	if level > 100 {
		level = 100
	}

	m.level.Store(int32(level))
	return level
}

// Level returns the most recent volume level (0-100).
func (m *Meter) Level() int {
	return int(m.level.Load())
}

// Reset clears the level, used when a session disconnects.
func (m *Meter) Reset() {
	m.level.Store(0)
}
