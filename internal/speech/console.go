package speech

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

// ConsoleFactory backs the speech interfaces with plain text streams:
// transcripts are read line by line from the reader and prompts are printed
// to the writer. It drives the dialogue engine in deployments and tests
// where no recognition or synthesis engine is integrated.
type ConsoleFactory struct {
	reader io.Reader
	writer io.Writer
}

// NewConsoleFactory creates a text-stream speech factory.
func NewConsoleFactory(r io.Reader, w io.Writer) *ConsoleFactory {
	return &ConsoleFactory{reader: r, writer: w}
}

// NewRecognizer starts a line reader producing one transcript per line.
func (f *ConsoleFactory) NewRecognizer(ctx context.Context, language string) (Recognizer, error) {
	rec := &consoleRecognizer{
		results: make(chan string),
		done:    make(chan struct{}),
	}
	rec.listening.Store(true)

	go func() {
		defer close(rec.results)

		scanner := bufio.NewScanner(f.reader)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || !rec.listening.Load() {
				continue
			}
			select {
			case rec.results <- line:
			case <-rec.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return rec, nil
}

// NewSynthesizer returns a synthesizer that prints utterances.
func (f *ConsoleFactory) NewSynthesizer(ctx context.Context, language string) (Synthesizer, error) {
	return &consoleSynthesizer{writer: f.writer}, nil
}

type consoleRecognizer struct {
	results   chan string
	done      chan struct{}
	listening atomic.Bool
	closeOnce sync.Once
}

func (r *consoleRecognizer) Start() { r.listening.Store(true) }
func (r *consoleRecognizer) Stop()  { r.listening.Store(false) }

func (r *consoleRecognizer) Results() <-chan string { return r.results }

func (r *consoleRecognizer) Close() error {
	r.closeOnce.Do(func() { close(r.done) })
	return nil
}

type consoleSynthesizer struct {
	writer io.Writer
	mu     sync.Mutex
}

func (s *consoleSynthesizer) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.writer, "[assistant] %s\n", text)
	return err
}
