package audio

import "context"

// InputDevice is an acquired audio capture device. Frames yields fixed-size
// float32 capture frames until the device is closed or lost; the channel is
// closed on mid-session device loss so the session can tear down.
type InputDevice interface {
	Frames() <-chan []float32
	SampleRate() int
	Close() error
}

// OutputDevice is an acquired audio playback device. It consumes scheduled
// buffers as a Sink.
type OutputDevice interface {
	Sink
	Close() error
}

// DeviceOpener acquires audio hardware for a session. Acquisition failures
// (for example a denied microphone) are fatal to the connecting session.
type DeviceOpener interface {
	OpenInput(ctx context.Context) (InputDevice, error)
	OpenOutput(ctx context.Context, sampleRate int) (OutputDevice, error)
}
