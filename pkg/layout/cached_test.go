package layout

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topovis/pkg/cache"
)

func TestCachedEngineReusesOutput(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	inner := &fakeEngine{out: groupedJSON}
	engine := NewCachedEngine(inner, c, nil, log.New(io.Discard))
	a := NewWithEngine(engine, DefaultOptions())

	g := buildGraph(t, true)
	first, err := a.Layout(context.Background(), g)
	if err != nil {
		t.Fatalf("first Layout: %v", err)
	}
	second, err := a.Layout(context.Background(), g)
	if err != nil {
		t.Fatalf("second Layout: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("engine calls = %d, want 1", inner.calls)
	}
	if first.Width != second.Width || len(first.Nodes) != len(second.Nodes) {
		t.Errorf("cached layout differs: %+v vs %+v", first, second)
	}
}

func TestCachedEngineDoesNotCacheFailures(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	inner := &fakeEngine{err: errors.New("syntax error")}
	engine := NewCachedEngine(inner, c, nil, log.New(io.Discard))

	for i := 0; i < 2; i++ {
		if _, err := engine.Run(context.Background(), []byte("digraph G {")); err == nil {
			t.Fatal("expected error")
		}
	}
	if inner.calls != 2 {
		t.Errorf("engine calls = %d, want 2", inner.calls)
	}
}

func TestCachedEngineNullCache(t *testing.T) {
	inner := &fakeEngine{out: "{}"}
	engine := NewCachedEngine(inner, cache.NewNullCache(), nil, nil)
	for i := 0; i < 3; i++ {
		if _, err := engine.Run(context.Background(), []byte("digraph G {}")); err != nil {
			t.Fatal(err)
		}
	}
	if inner.calls != 3 {
		t.Errorf("engine calls = %d, want 3", inner.calls)
	}
}
