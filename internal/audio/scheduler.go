package audio

import (
	"sync"
	"time"
)

// Clock returns the current playback clock time. Injectable for tests.
type Clock func() time.Time

// Buffer represents one decoded audio buffer scheduled for playback.
type Buffer struct {
	Samples    []float32
	SampleRate int
	StartAt    time.Time
	Duration   time.Duration
}

// EndAt returns the time playback of this buffer finishes.
func (b *Buffer) EndAt() time.Time {
	return b.StartAt.Add(b.Duration)
}

// Sink plays scheduled buffers on an output device. Play must begin playback
// at b.StartAt; Stop must halt a still-playing buffer immediately.
type Sink interface {
	Play(b *Buffer)
	Stop(b *Buffer)
}

// Scheduler maintains the queue of scheduled, not-yet-finished playback
// buffers and a monotonically non-decreasing next-start cursor so that
// consecutive buffers play back-to-back with no gaps and no overlap,
// regardless of arrival pacing.
type Scheduler struct {
	sink      Sink
	now       Clock
	nextStart time.Time
	queue     []*Buffer
	mu        sync.Mutex
}

// NewScheduler creates a playback scheduler delivering buffers to sink.
// A nil clock defaults to time.Now.
func NewScheduler(sink Sink, now Clock) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		sink:  sink,
		now:   now,
		queue: make([]*Buffer, 0, 16),
	}
}

// Reset moves the next-start cursor to the current clock time. Called when a
// session connects so stale cursor state never delays the first buffer.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextStart = s.now()
}

// Schedule queues a decoded buffer for playback. The buffer starts at
// max(now, nextStart) and the cursor advances by the buffer's duration.
func (s *Scheduler) Schedule(samples []float32, sampleRate int) *Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneFinished(now)

	start := now
	if s.nextStart.After(now) {
		start = s.nextStart
	}

	duration := time.Duration(float64(len(samples)) / float64(sampleRate) * float64(time.Second))
	buffer := &Buffer{
		Samples:    samples,
		SampleRate: sampleRate,
		StartAt:    start,
		Duration:   duration,
	}

	s.nextStart = start.Add(duration)
	s.queue = append(s.queue, buffer)
	s.sink.Play(buffer)

	return buffer
}

// Flush force-stops every scheduled-but-unfinished buffer, empties the queue,
// and resets the cursor to now so the next inbound buffer plays immediately.
// It returns the number of buffers stopped.
func (s *Scheduler) Flush() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneFinished(now)

	stopped := len(s.queue)
	for _, buffer := range s.queue {
		s.sink.Stop(buffer)
	}
	s.queue = s.queue[:0]
	s.nextStart = now

	return stopped
}

// Complete removes a buffer that finished playing naturally.
func (s *Scheduler) Complete(buffer *Buffer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, queued := range s.queue {
		if queued == buffer {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}

// Pending returns the number of scheduled buffers that have not finished.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneFinished(s.now())
	return len(s.queue)
}

// NextStart returns the current cursor position.
func (s *Scheduler) NextStart() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextStart
}

// pruneFinished drops buffers whose playback window has elapsed. Callers must
// hold s.mu.
func (s *Scheduler) pruneFinished(now time.Time) {
	kept := s.queue[:0]
	for _, buffer := range s.queue {
		if buffer.EndAt().After(now) {
			kept = append(kept, buffer)
		}
	}
	s.queue = kept
}
