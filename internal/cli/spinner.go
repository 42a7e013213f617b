package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// spinnerFrames walk a dot along three nodes.
var spinnerFrames = []string{"●∙∙", "∙●∙", "∙∙●", "∙●∙"}

const spinnerInterval = 100 * time.Millisecond

// spinner animates one status line while a run is in flight. The line reads
// "<frame> <label> (<stage>)"; the stage names the current step, such as the
// format being encoded. It stops when stopped or when its context ends.
type spinner struct {
	w      io.Writer
	label  string
	parent context.Context

	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once

	mu    sync.Mutex
	stage string
	width int
}

// startSpinner starts animating label on w.
func startSpinner(ctx context.Context, w io.Writer, label string) *spinner {
	sctx, cancel := context.WithCancel(ctx)
	s := &spinner{
		w:       w,
		label:   label,
		parent:  ctx,
		ctx:     sctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *spinner) loop() {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.draw(spinnerFrames[i%len(spinnerFrames)])
		select {
		case <-s.ctx.Done():
			s.clear()
			return
		case <-ticker.C:
		}
	}
}

// setStage replaces the stage shown after the label.
func (s *spinner) setStage(stage string) {
	s.mu.Lock()
	s.stage = stage
	s.mu.Unlock()
}

// line returns the status text for frame.
func (s *spinner) line(frame string) string {
	text := s.label
	if s.stage != "" {
		text += " (" + s.stage + ")"
	}
	return styleIconSpinner.Render(frame) + " " + StyleDim.Render(text)
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := s.line(frame)
	if n := len(line); n > s.width {
		s.width = n
	}
	fmt.Fprintf(s.w, "\r%s", line)
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
}

// stop halts the animation and blanks the line. Calling it again is a no-op.
func (s *spinner) stop() {
	s.once.Do(s.cancel)
	<-s.stopped
}

// fail stops the spinner and prints msg as an error.
func (s *spinner) fail(msg string) {
	s.stop()
	printError("%s", msg)
}

// interrupted reports whether the caller's context ended the spinner.
func (s *spinner) interrupted() bool {
	return s.parent.Err() != nil
}
