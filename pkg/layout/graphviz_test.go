package layout

import (
	"context"
	"reflect"
	"testing"

	"github.com/matzehuels/topovis/pkg/graph"
)

// newGraphvizAdapter skips when the embedded Graphviz cannot start, which
// happens on platforms without a WebAssembly runtime.
func newGraphvizAdapter(t *testing.T) *Adapter {
	t.Helper()
	if _, err := (GraphvizEngine{}).Run(context.Background(), []byte("digraph G { a; }")); err != nil {
		t.Skipf("graphviz unavailable: %v", err)
	}
	return New(DefaultOptions())
}

func TestGraphvizLayoutGrouped(t *testing.T) {
	a := newGraphvizAdapter(t)
	g := buildGraph(t, true)

	pg, err := a.Layout(context.Background(), g)
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if len(pg.Nodes) != 2 || len(pg.Groups) != 1 || len(pg.Edges) != 1 {
		t.Fatalf("got %d nodes, %d groups, %d edges", len(pg.Nodes), len(pg.Groups), len(pg.Edges))
	}

	na, _ := pg.Node("a")
	nb, _ := pg.Node("b")
	if na.Width != 250 || na.Height != 250 {
		t.Errorf("a size = %vx%v, want 250x250", na.Width, na.Height)
	}
	if nb.X <= na.X {
		t.Errorf("ranks do not flow left to right: a.x=%v b.x=%v", na.X, nb.X)
	}

	g1, _ := pg.Group("g1")
	r := g1.Bounds()
	for _, n := range []Box{na, nb} {
		nr := n.Bounds()
		if nr.X < r.X || nr.Y < r.Y || nr.MaxX() > r.MaxX() || nr.MaxY() > r.MaxY() {
			t.Errorf("node %s %+v outside cluster %+v", n.ID, nr, r)
		}
	}
	if (g1.X == na.X && g1.Y == na.Y) || (g1.X == nb.X && g1.Y == nb.Y) {
		t.Error("group center coincides with a member node")
	}

	e, _ := pg.Edge("e1")
	if e.Label != "A→B" || len(e.Points) < 4 || e.LabelPos == nil {
		t.Errorf("edge route = %+v", e)
	}
}

func TestGraphvizLayoutDeterministic(t *testing.T) {
	a := newGraphvizAdapter(t)
	g := buildGraph(t, true)

	first, err := a.Layout(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.Layout(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two layouts of the same graph differ")
	}
}

func TestGraphvizLayoutAwkwardIDs(t *testing.T) {
	a := newGraphvizAdapter(t)
	doc := graph.Document{
		Nodes: []graph.NodeSpec{
			{ID: "cluster_0", Label: "cluster_0"},
			{ID: `C:\a`, Label: `C:\a`},
			{ID: `quote"d`, Label: `\N`},
		},
		Edges: []graph.EdgeSpec{
			{Source: "cluster_0", Target: `C:\a`},
			{Source: `C:\a`, Target: `quote"d`, Label: `back\slash`},
		},
		Groups: []graph.GroupSpec{{ID: "g1", Label: "G1", Nodes: []string{`quote"d`}}},
	}
	g, err := graph.Build(doc, graph.DefaultBuildOptions())
	if err != nil {
		t.Fatal(err)
	}

	pg, err := a.Layout(context.Background(), g)
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	for _, id := range []string{"cluster_0", `C:\a`, `quote"d`} {
		if _, ok := pg.Node(id); !ok {
			t.Errorf("node %q missing", id)
		}
	}
	if n, _ := pg.Node(`quote"d`); n.Label != `\N` {
		t.Errorf("label = %q, want a literal \\N", n.Label)
	}
	if _, ok := pg.Group("g1"); !ok {
		t.Error("group g1 missing")
	}
	if len(pg.Edges) != 2 || pg.Edges[1].Label != `back\slash` {
		t.Errorf("edges = %+v", pg.Edges)
	}
}
