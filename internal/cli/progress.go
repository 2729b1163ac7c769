package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Spinner provides an animated spinner for indeterminate operations such
// as scanning a project tree.
type Spinner struct {
	message string
	writer  io.Writer
	active  bool
	done    chan struct{}
	mu      sync.Mutex
	frames  []string
	current int
}

var spinnerFrames = []string{"|", "/", "-", "\\"}

// NewSpinner creates a spinner writing to stderr.
func NewSpinner(message string) *Spinner {
	return &Spinner{message: message, writer: os.Stderr, frames: spinnerFrames}
}

// Start begins the animation. Outside a TTY the message is printed once.
func (s *Spinner) Start() {
	if !EnableColors() {
		fmt.Fprintf(s.writer, "%s...\n", s.message)
		return
	}

	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.spin()
}

func (s *Spinner) spin() {
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			frame := Info(s.frames[s.current])
			msg := s.message
			s.current = (s.current + 1) % len(s.frames)
			s.mu.Unlock()
			fmt.Fprintf(s.writer, "\r%s %s", frame, msg)
		}
	}
}

// Stop stops the spinner and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	close(s.done)
	s.mu.Unlock()

	fmt.Fprintf(s.writer, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

// StopWithSuccess stops the spinner with a success line.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	fmt.Fprintln(s.writer, Success("ok")+" "+message)
}

// StopWithError stops the spinner with a failure line.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	fmt.Fprintln(s.writer, Error("failed")+" "+message)
}

// TaskProgress prints "[n/total] command ... ok (12ms)" lines for a
// sequential command run.
type TaskProgress struct {
	total  int
	writer io.Writer
	start  time.Time
}

// NewTaskProgress creates a tracker for total tasks writing to w.
func NewTaskProgress(w io.Writer, total int) *TaskProgress {
	if w == nil {
		w = os.Stderr
	}
	return &TaskProgress{total: total, writer: w}
}

// Start announces task seq (1-based).
func (t *TaskProgress) Start(seq int, task string) {
	t.start = time.Now()
	fmt.Fprintf(t.writer, "  [%d/%d] %s\n", seq, t.total, task)
}

// Complete marks the current task done.
func (t *TaskProgress) Complete(d time.Duration) {
	fmt.Fprintf(t.writer, "        %s (%s)\n", Success("ok"), FormatDuration(d))
}

// Failed marks the current task failed.
func (t *TaskProgress) Failed(d time.Duration, err error) {
	fmt.Fprintf(t.writer, "        %s (%s): %s\n", Error("failed"), FormatDuration(d), firstLine(err.Error()))
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
