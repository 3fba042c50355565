package audio

import (
	"context"
	"sync"
	"time"
)

// LoopbackOpener provides software audio devices for deployments without a
// platform capture driver. The input emits silent frames at the configured
// cadence; the output accepts and discards scheduled buffers. Real playback
// hardware plugs in through the same DeviceOpener interface.
type LoopbackOpener struct {
	SampleRate int
	FrameSize  int
}

// NewLoopbackOpener creates a loopback device opener.
func NewLoopbackOpener(sampleRate, frameSize int) *LoopbackOpener {
	return &LoopbackOpener{SampleRate: sampleRate, FrameSize: frameSize}
}

// OpenInput starts a silent capture stream paced at the real frame rate.
func (o *LoopbackOpener) OpenInput(ctx context.Context) (InputDevice, error) {
	in := &loopbackInput{
		frames: make(chan []float32),
		rate:   o.SampleRate,
		done:   make(chan struct{}),
	}

	interval := time.Duration(o.FrameSize) * time.Second / time.Duration(o.SampleRate)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		defer close(in.frames)

		for {
			select {
			case <-ctx.Done():
				return
			case <-in.done:
				return
			case <-ticker.C:
				frame := make([]float32, o.FrameSize)
				select {
				case in.frames <- frame:
				case <-in.done:
					return
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return in, nil
}

// OpenOutput returns a sink that discards playback.
func (o *LoopbackOpener) OpenOutput(ctx context.Context, sampleRate int) (OutputDevice, error) {
	return &loopbackOutput{}, nil
}

type loopbackInput struct {
	frames    chan []float32
	rate      int
	done      chan struct{}
	closeOnce sync.Once
}

func (i *loopbackInput) Frames() <-chan []float32 { return i.frames }
func (i *loopbackInput) SampleRate() int          { return i.rate }

func (i *loopbackInput) Close() error {
	i.closeOnce.Do(func() { close(i.done) })
	return nil
}

type loopbackOutput struct{}

func (o *loopbackOutput) Play(b *Buffer) {}
func (o *loopbackOutput) Stop(b *Buffer) {}
func (o *loopbackOutput) Close() error   { return nil }
