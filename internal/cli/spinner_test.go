package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer lets the test read what the spinner goroutine writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, b *syncBuffer, text string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(b.String(), text) {
		if time.Now().After(deadline) {
			t.Fatalf("spinner never wrote %q; got %q", text, b.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSpinnerShowsLabelAndStage(t *testing.T) {
	var out syncBuffer
	s := startSpinner(context.Background(), &out, "Rendering net.yaml")
	waitFor(t, &out, "Rendering net.yaml")

	s.setStage("png")
	waitFor(t, &out, "Rendering net.yaml (png)")
	s.stop()

	got := out.String()
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("stop should blank the line, output ends with %q", got[len(got)-10:])
	}
	if s.interrupted() {
		t.Error("interrupted() = true after a plain stop")
	}
}

func TestSpinnerParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	s := startSpinner(ctx, &out, "Rendering http://localhost:8000")
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("spinner kept running after its context was cancelled")
	}
	if !s.interrupted() {
		t.Error("interrupted() = false after parent cancel")
	}
	s.stop()
}

func TestSpinnerParentTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	s := startSpinner(ctx, &syncBuffer{}, "Rendering redis://localhost:6379/graph")
	<-ctx.Done()
	s.stop()
	if !s.interrupted() {
		t.Error("interrupted() = false after the deadline passed")
	}
}

func TestSpinnerStopTwice(t *testing.T) {
	s := startSpinner(context.Background(), &syncBuffer{}, "Rendering graph.json")
	s.stop()
	s.stop()
}

func TestSpinnerFail(t *testing.T) {
	var out syncBuffer
	s := startSpinner(context.Background(), &out, "Rendering graph.json")
	waitFor(t, &out, "graph.json")
	s.fail("Render failed")

	n := len(out.String())
	time.Sleep(3 * spinnerInterval)
	if len(out.String()) != n {
		t.Error("spinner wrote after fail")
	}
}
