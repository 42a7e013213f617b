package layout

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// Engine runs a layout over a DOT document and returns Graphviz JSON.
type Engine interface {
	Run(ctx context.Context, dot []byte) ([]byte, error)
}

// formatJSON is the Graphviz -Tjson renderer.
const formatJSON = "json"

// GraphvizEngine runs dot through the embedded WebAssembly build of Graphviz.
// Each call starts a fresh instance, so it is safe for concurrent use.
type GraphvizEngine struct{}

// Run lays out dot and returns the Graphviz JSON rendering.
func (GraphvizEngine) Run(ctx context.Context, dot []byte) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(dot)
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, formatJSON, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
