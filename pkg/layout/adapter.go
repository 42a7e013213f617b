package layout

import (
	"context"

	"github.com/matzehuels/topovis/pkg/errors"
	"github.com/matzehuels/topovis/pkg/graph"
)

// Adapter lays out graphs with a layered layout engine.
type Adapter struct {
	engine Engine
	opts   Options
}

// New returns an Adapter backed by Graphviz.
func New(opts Options) *Adapter {
	return NewWithEngine(GraphvizEngine{}, opts)
}

// NewWithEngine returns an Adapter backed by the given engine.
func NewWithEngine(engine Engine, opts Options) *Adapter {
	opts.SetDefaults()
	return &Adapter{engine: engine, opts: opts}
}

// Options returns the adapter's effective options.
func (a *Adapter) Options() Options { return a.opts }

// Layout positions every node, group and edge of g. Any engine failure or
// missing entity fails with UNSATISFIABLE_CONSTRAINTS; a partial layout is
// never returned.
func (a *Adapter) Layout(ctx context.Context, g *graph.Graph) (*PositionedGraph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.NodeCount() == 0 && g.GroupCount() == 0 {
		pg := &PositionedGraph{Nodes: []Box{}, Groups: []Box{}, Edges: []Route{}}
		pg.reindex()
		return pg, nil
	}

	out, err := a.engine.Run(ctx, []byte(ToDOT(g, a.opts)))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeUnsatisfiableConstraints, err, "layout engine failed")
	}

	pg, err := decode(out, g)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsatisfiableConstraints, err, "layout incomplete")
	}
	return pg, nil
}
