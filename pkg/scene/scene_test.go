package scene

import (
	"testing"

	"github.com/matzehuels/topovis/pkg/fonts"
	"github.com/matzehuels/topovis/pkg/graph"
	"github.com/matzehuels/topovis/pkg/layout"
)

// fixedMeasurer reports 10px per rune and an 8/2 ascent/descent.
type fixedMeasurer struct{}

func (fixedMeasurer) Measure(text string, size float64, _ fonts.Weight) fonts.Metrics {
	return fonts.Metrics{Width: float64(len([]rune(text))) * 10, Ascent: 8, Descent: 2, LineCount: 1, Size: size}
}

func samplePositioned() *layout.PositionedGraph {
	return &layout.PositionedGraph{
		Width:  700,
		Height: 314,
		Nodes: []layout.Box{
			{ID: "a", Label: "A", X: 157, Y: 157, Width: 250, Height: 250},
			{ID: "b", Label: "B", X: 543, Y: 157, Width: 250, Height: 250},
		},
		Groups: []layout.Box{
			{ID: "g1", X: 350, Y: 157, Width: 684, Height: 298},
		},
		Edges: []layout.Route{{
			Key:      graph.EdgeKey{Source: "a", Target: "b", ID: "e1"},
			Label:    "A→B",
			Points:   []layout.Point{{X: 282, Y: 157}, {X: 320, Y: 157}, {X: 360, Y: 157}, {X: 400, Y: 157}},
			End:      &layout.Point{X: 418, Y: 157},
			LabelPos: &layout.Point{X: 350, Y: 148.5},
		}},
	}
}

func TestRenderPaintOrder(t *testing.T) {
	sc := Render(samplePositioned())

	if sc.Root.Class != ClassOutput {
		t.Fatalf("root class = %q", sc.Root.Class)
	}
	want := []string{ClassClusters, ClassEdgePaths, ClassEdgeLabels, ClassNodes}
	if len(sc.Root.Children) != len(want) {
		t.Fatalf("root has %d children, want %d", len(sc.Root.Children), len(want))
	}
	for i, c := range sc.Root.Children {
		if c.Class != want[i] {
			t.Errorf("child %d class = %q, want %q", i, c.Class, want[i])
		}
	}
}

func TestRenderElements(t *testing.T) {
	sc := Render(samplePositioned())

	cluster, ok := sc.Find(ClassCluster, "g1")
	if !ok {
		t.Fatal("cluster g1 not rendered")
	}
	if cluster.X != 350 || cluster.Y != 157 {
		t.Errorf("cluster translate = %v,%v", cluster.X, cluster.Y)
	}
	rect := cluster.Children[0]
	if rect.Kind != KindRect || rect.X != -342 || rect.Y != -149 || rect.Width != 684 || rect.Height != 298 {
		t.Errorf("cluster rect = %+v", rect)
	}

	node, ok := sc.Find(ClassNode, "a")
	if !ok {
		t.Fatal("node a not rendered")
	}
	if len(node.Children) != 2 || node.Children[0].Kind != KindRect {
		t.Fatalf("node children = %+v", node.Children)
	}
	text := node.Children[1].Children[0]
	if text.Kind != KindText || text.Text != "A" || text.Anchor != "middle" {
		t.Errorf("node label = %+v", text)
	}

	paths := sc.FindAll(ClassEdgePath)
	if len(paths) != 1 || paths[0].Edge.ID != "e1" {
		t.Fatalf("edge paths = %+v", paths)
	}
	if paths[0].Children[0].Marker != MarkerArrowhead {
		t.Error("edge path missing arrowhead")
	}

	labels := sc.FindAll(ClassEdgeLabel)
	if len(labels) != 1 || labels[0].Children[0].Text != "A→B" {
		t.Fatalf("edge labels = %+v", labels)
	}
}

func TestRenderUnlabelledEdge(t *testing.T) {
	pg := samplePositioned()
	pg.Edges[0].LabelPos = nil
	sc := Render(pg)
	if n := len(sc.FindAll(ClassEdgeLabel)); n != 0 {
		t.Errorf("edge labels = %d, want 0", n)
	}
}

func TestRenderDoesNotAlias(t *testing.T) {
	pg := samplePositioned()
	sc := Render(pg)
	pg.Edges[0].Points[0].X = -1
	pg.Edges[0].End.X = -1

	path := sc.FindAll(ClassPath)[0]
	if path.Points[0].X != 282 || path.End.X != 418 {
		t.Error("scene shares memory with the positioned graph")
	}
}

func TestMapIsPure(t *testing.T) {
	sc := Render(samplePositioned())
	styled := sc.Map(func(el *Element) {
		if el.Kind == KindRect {
			el.Style.Fill = "red"
		}
		if el.Class == ClassEdgeLabel {
			el.Children = append([]Element{{Kind: KindRect, Class: ClassLabelBG}}, el.Children...)
		}
	})

	for _, r := range sc.FindAll("") {
		if r.Kind == KindRect && r.Style.Fill == "red" {
			t.Fatal("Map() modified the input scene")
		}
	}
	if len(sc.FindAll(ClassLabelBG)) != 0 {
		t.Error("Map() inserted into the input scene")
	}

	node, _ := styled.Find(ClassNode, "a")
	if node.Children[0].Style.Fill != "red" {
		t.Error("Map() did not apply to the copy")
	}
	if len(styled.FindAll(ClassLabelBG)) != 1 {
		t.Error("inserted child missing from the copy")
	}
}

func TestAppend(t *testing.T) {
	sc := Render(samplePositioned())
	out := sc.Append(Element{Kind: KindText, Class: ClassGroupLabel, Text: "G1"})

	if len(sc.Root.Children) != 4 {
		t.Error("Append() modified the input scene")
	}
	last := out.Root.Children[len(out.Root.Children)-1]
	if last.Class != ClassGroupLabel || last.Text != "G1" {
		t.Errorf("appended element = %+v", last)
	}
}

func TestPathData(t *testing.T) {
	el := Element{
		Kind:   KindPath,
		Points: []layout.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3.125}},
		End:    &layout.Point{X: 4, Y: 4},
	}
	want := "M0,0C1,1 2,2 3,3.13L4,4"
	if got := el.PathData(); got != want {
		t.Errorf("PathData() = %q, want %q", got, want)
	}
	if (&Element{Kind: KindPath}).PathData() != "" {
		t.Error("empty path should have no data")
	}
}

func TestBBox(t *testing.T) {
	m := fixedMeasurer{}
	tests := []struct {
		name string
		el   Element
		want layout.Rect
	}{
		{
			name: "rect",
			el:   Element{Kind: KindRect, X: -5, Y: -10, Width: 10, Height: 20},
			want: layout.Rect{X: -5, Y: -10, Width: 10, Height: 20},
		},
		{
			name: "circle",
			el:   Element{Kind: KindCircle, X: 10, Y: 10, R: 5},
			want: layout.Rect{X: 5, Y: 5, Width: 10, Height: 10},
		},
		{
			name: "path with end",
			el: Element{
				Kind:   KindPath,
				Points: []layout.Point{{X: 0, Y: 5}, {X: 10, Y: -5}},
				End:    &layout.Point{X: 20, Y: 0},
			},
			want: layout.Rect{X: 0, Y: -5, Width: 20, Height: 10},
		},
		{
			name: "middle text",
			el:   Element{Kind: KindText, Text: "abcd", Anchor: "middle", DY: 2},
			want: layout.Rect{X: -20, Y: -6, Width: 40, Height: 10},
		},
		{
			name: "start text",
			el:   Element{Kind: KindText, Text: "ab", X: 3},
			want: layout.Rect{X: 3, Y: -8, Width: 20, Height: 10},
		},
		{
			name: "translated group",
			el: Element{
				Kind: KindGroup, X: 100, Y: 50,
				Children: []Element{
					{Kind: KindRect, X: -10, Y: -10, Width: 20, Height: 20},
					{Kind: KindRect, X: 0, Y: 0, Width: 30, Height: 5},
				},
			},
			want: layout.Rect{X: 90, Y: 40, Width: 40, Height: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BBox(tt.el, m)
			if !ok {
				t.Fatal("BBox() ok = false")
			}
			if got != tt.want {
				t.Errorf("BBox() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBBoxEmpty(t *testing.T) {
	m := fixedMeasurer{}
	for _, el := range []Element{
		{Kind: KindText},
		{Kind: KindPath},
		{Kind: KindGroup},
		{Kind: KindGroup, Children: []Element{{Kind: KindText}}},
	} {
		if _, ok := BBox(el, m); ok {
			t.Errorf("BBox(%v) ok = true, want false", el.Kind)
		}
	}
}

func TestSceneBounds(t *testing.T) {
	sc := Render(samplePositioned())
	b := sc.Bounds(fixedMeasurer{})
	// The cluster spans 8..692 x 8..306.
	if b.X != 8 || b.Y != 8 || b.MaxX() != 692 || b.MaxY() != 306 {
		t.Errorf("Bounds() = %+v", b)
	}
}
