package output

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a message until stopped. Each method is safe to call
// once; stopping a spinner that never started only prints the final line.
type Spinner struct {
	w        io.Writer
	message  string
	interval time.Duration

	mu       sync.Mutex
	started  bool
	stopped  bool
	done     chan struct{}
	finished chan struct{}
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:        w,
		message:  message,
		interval: 100 * time.Millisecond,
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true

	go func() {
		defer close(s.finished)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			fmt.Fprintf(s.w, "\r%s %s", spinnerFrames[i%len(spinnerFrames)], s.message)
			select {
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop ends the animation and clears the line.
func (s *Spinner) Stop() {
	if s.halt() {
		fmt.Fprint(s.w, "\r\033[K")
	}
}

// Success ends the animation with a check mark line.
func (s *Spinner) Success(message string) {
	if s.halt() {
		fmt.Fprintf(s.w, "\r\033[K✓ %s\n", message)
	}
}

// Fail ends the animation with a cross line.
func (s *Spinner) Fail(message string) {
	if s.halt() {
		fmt.Fprintf(s.w, "\r\033[K✗ %s\n", message)
	}
}

// halt stops the goroutine and reports whether this call did so.
func (s *Spinner) halt() bool {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return false
	}
	s.stopped = true
	started := s.started
	close(s.done)
	s.mu.Unlock()

	if started {
		<-s.finished
	}
	return true
}
