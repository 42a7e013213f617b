// Package style maps domain attributes (label text, color) onto the elements
// of a rendered scene, replacing the default presentation.
//
// Lookups use the indexes precomputed by [graph.Build], so each element is
// resolved in constant time. An element whose domain entity cannot be found
// keeps its default style and is reported as a [Miss]; misses never abort
// the render.
package style

import (
	"fmt"

	"github.com/matzehuels/topovis/pkg/graph"
	"github.com/matzehuels/topovis/pkg/layout"
	"github.com/matzehuels/topovis/pkg/scene"
)

// Miss records a rendered element whose domain entity was not found.
type Miss struct {
	Class string
	ID    string
}

func (m Miss) String() string {
	return fmt.Sprintf("%s %q", m.Class, m.ID)
}

// Result is the styled scene and the lookup misses encountered.
type Result struct {
	Scene  *scene.Scene
	Misses []Miss
}

// Apply returns a styled copy of sc. The input scene is not modified.
func Apply(sc *scene.Scene, g *graph.Graph, pg *layout.PositionedGraph, opts Options) Result {
	opts.SetDefaults()
	r := &resolver{g: g, pg: pg, opts: opts}
	out := sc.Map(r.visit)
	return Result{Scene: out, Misses: r.misses}
}

type resolver struct {
	g      *graph.Graph
	pg     *layout.PositionedGraph
	opts   Options
	misses []Miss
}

func (r *resolver) miss(class, id string) {
	r.misses = append(r.misses, Miss{Class: class, ID: id})
}

func (r *resolver) visit(el *scene.Element) {
	switch el.Class {
	case scene.ClassCluster:
		r.cluster(el)
	case scene.ClassNode:
		r.node(el)
	case scene.ClassEdgePath:
		r.edgePath(el)
	case scene.ClassEdgeLabel:
		r.edgeLabel(el)
	}
}

func (r *resolver) cluster(el *scene.Element) {
	if _, ok := r.g.Group(el.Datum); !ok {
		r.miss(el.Class, el.Datum)
		return
	}
	for i := range el.Children {
		if el.Children[i].Kind == scene.KindRect {
			el.Children[i].Style = scene.Style{
				Fill:        r.opts.ClusterFill,
				Stroke:      r.opts.Stroke,
				StrokeWidth: r.opts.StrokeWidth,
			}
		}
	}
}

func (r *resolver) node(el *scene.Element) {
	n, ok := r.g.Node(el.Datum)
	if !ok {
		r.miss(el.Class, el.Datum)
		return
	}
	if _, ok := r.pg.Node(el.Datum); !ok {
		r.miss(el.Class, el.Datum)
		return
	}

	fill := n.Color
	if fill == "" {
		fill = r.opts.NodeFill
	}
	shapeStyle := scene.Style{Fill: fill, Stroke: r.opts.Stroke, StrokeWidth: r.opts.StrokeWidth}

	for i := range el.Children {
		child := &el.Children[i]
		switch {
		case child.Kind == scene.KindRect && r.opts.NodeShape == ShapeCircle:
			*child = scene.Element{Kind: scene.KindCircle, R: r.opts.NodeRadius, Style: shapeStyle}
		case child.Kind == scene.KindRect:
			child.Style = shapeStyle
		case child.Kind == scene.KindGroup && child.Class == scene.ClassLabel:
			setText(child, n.Label, func(t *scene.Element) {
				if r.opts.NodeShape == ShapeCircle {
					t.Style.FontSize = CircleLabelSize
					t.Style.FontWeight = "bold"
					t.DY = centerDY * CircleLabelSize
				}
			})
		}
	}
}

// edge resolves the domain edge bound to a rendered element.
func (r *resolver) edge(key graph.EdgeKey) (graph.Edge, bool) {
	if r.opts.MatchKey == MatchUID && key.ID != "" {
		return r.g.Edge(key.ID)
	}
	return r.g.EdgeByPair(key.Source, key.Target)
}

func (r *resolver) edgePath(el *scene.Element) {
	e, ok := r.edge(el.Edge)
	if !ok {
		r.miss(el.Class, el.Edge.String())
		return
	}
	for i := range el.Children {
		child := &el.Children[i]
		if child.Kind != scene.KindPath {
			continue
		}
		stroke := e.Color
		if stroke == "" {
			stroke = child.Style.Stroke
		}
		child.Style = scene.Style{
			Fill:          "none",
			Stroke:        stroke,
			StrokeWidth:   r.opts.EdgeWidth,
			StrokeOpacity: r.opts.EdgeOpacity,
		}
	}
}

func (r *resolver) edgeLabel(el *scene.Element) {
	e, ok := r.edge(el.Edge)
	if !ok {
		r.miss(el.Class, el.Edge.String())
		return
	}

	// Drop a background from an earlier pass so styling stays idempotent.
	kids := el.Children[:0:0]
	for _, c := range el.Children {
		if c.Class != scene.ClassLabelBG {
			kids = append(kids, c)
		}
	}
	el.Children = kids

	textAt := -1
	for i := range el.Children {
		if el.Children[i].Kind == scene.KindText {
			textAt = i
			break
		}
	}
	if textAt < 0 {
		r.miss(el.Class, el.Edge.String())
		return
	}

	text := &el.Children[textAt]
	text.Text = e.Label
	text.Style = scene.Style{Fill: DefaultLabelFill, FontSize: DefaultLabelSize}
	text.DY = centerDY * DefaultLabelSize
	if !r.opts.LabelBackground {
		return
	}

	text.Style.FontSize = LabelBackgroundSize
	text.Style.FontWeight = "bold"
	text.DY = LabelBackgroundDY
	if e.Label == "" {
		return
	}

	box, ok := scene.BBox(*text, r.opts.Measurer)
	if !ok {
		return
	}
	pad := r.opts.LabelPadding
	bg := scene.Element{
		Kind:   scene.KindRect,
		Class:  scene.ClassLabelBG,
		X:      box.X - pad,
		Y:      box.Y - pad,
		Width:  box.Width + 2*pad,
		Height: box.Height + 2*pad,
		RX:     LabelBackgroundRadius,
		RY:     LabelBackgroundRadius,
		Style:  scene.Style{Fill: LabelBackgroundFill},
	}
	// The background goes immediately before the text so it paints behind it.
	kids = make([]scene.Element, 0, len(el.Children)+1)
	kids = append(kids, el.Children[:textAt]...)
	kids = append(kids, bg)
	kids = append(kids, el.Children[textAt:]...)
	el.Children = kids
}

// setText sets the text of every text element under a label group.
func setText(label *scene.Element, text string, adjust func(*scene.Element)) {
	for i := range label.Children {
		if label.Children[i].Kind == scene.KindText {
			label.Children[i].Text = text
			adjust(&label.Children[i])
		}
	}
}
