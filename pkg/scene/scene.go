package scene

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/topovis/pkg/graph"
	"github.com/matzehuels/topovis/pkg/layout"
)

// Kind is the shape of an element.
type Kind int

const (
	KindGroup Kind = iota
	KindRect
	KindCircle
	KindPath
	KindText
)

var kindNames = [...]string{"g", "rect", "circle", "path", "text"}

// String returns the SVG tag name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Element classes used by Render and the styling stages.
const (
	ClassOutput     = "output"
	ClassClusters   = "clusters"
	ClassCluster    = "cluster"
	ClassEdgePaths  = "edgePaths"
	ClassEdgePath   = "edgePath"
	ClassPath       = "path"
	ClassEdgeLabels = "edgeLabels"
	ClassEdgeLabel  = "edgeLabel"
	ClassNodes      = "nodes"
	ClassNode       = "node"
	ClassLabel      = "label"
	ClassLabelBG    = "label-bg"
	ClassGroupLabel = "cluster-label"
)

// MarkerArrowhead is the marker id for edge arrowheads.
const MarkerArrowhead = "arrowhead"

// Style holds presentation attributes. Zero values are unset.
type Style struct {
	Fill          string  `json:"fill,omitempty"`
	Stroke        string  `json:"stroke,omitempty"`
	StrokeWidth   float64 `json:"stroke_width,omitempty"`
	StrokeOpacity float64 `json:"stroke_opacity,omitempty"`
	FontSize      float64 `json:"font_size,omitempty"`
	FontWeight    string  `json:"font_weight,omitempty"`
}

// CSS renders the style as an inline style attribute value.
func (s Style) CSS() string {
	var parts []string
	if s.Fill != "" {
		parts = append(parts, "fill: "+s.Fill)
	}
	if s.Stroke != "" {
		parts = append(parts, "stroke: "+s.Stroke)
	}
	if s.StrokeWidth != 0 {
		parts = append(parts, "stroke-width: "+fmtNum(s.StrokeWidth)+"px")
	}
	if s.StrokeOpacity != 0 {
		parts = append(parts, "stroke-opacity: "+fmtNum(s.StrokeOpacity))
	}
	if s.FontSize != 0 {
		parts = append(parts, "font-size: "+fmtNum(s.FontSize)+"px")
	}
	if s.FontWeight != "" {
		parts = append(parts, "font-weight: "+s.FontWeight)
	}
	return strings.Join(parts, "; ")
}

// Element is a node of the scene tree.
//
// Geometry depends on Kind: a group is translated by (X, Y); a rect has its
// top-left corner at (X, Y); a circle is centered at (X, Y) with radius R; a
// text is anchored at (X, Y+DY); a path follows Points and ends at End.
type Element struct {
	Kind  Kind   `json:"kind"`
	Class string `json:"class,omitempty"`

	// Datum is the bound node or group id; Edge is the bound edge.
	Datum string        `json:"datum,omitempty"`
	Edge  graph.EdgeKey `json:"edge,omitempty"`

	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	R      float64 `json:"r,omitempty"`
	RX     float64 `json:"rx,omitempty"`
	RY     float64 `json:"ry,omitempty"`

	Points []layout.Point `json:"points,omitempty"`
	End    *layout.Point  `json:"end,omitempty"`
	Marker string         `json:"marker,omitempty"`

	Text   string  `json:"text,omitempty"`
	Anchor string  `json:"anchor,omitempty"`
	DY     float64 `json:"dy,omitempty"`

	Style    Style     `json:"style"`
	Children []Element `json:"children,omitempty"`
}

// HasEdge reports whether the element is bound to an edge.
func (e *Element) HasEdge() bool { return e.Edge != (graph.EdgeKey{}) }

// PathData returns the SVG path commands of a path element: a move to the
// first point, cubic Bézier segments through the remaining triples, and a
// line to End when set.
func (e *Element) PathData() string {
	if len(e.Points) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "M%s,%s", fmtNum(e.Points[0].X), fmtNum(e.Points[0].Y))
	rest := e.Points[1:]
	for len(rest) >= 3 {
		fmt.Fprintf(&b, "C%s,%s %s,%s %s,%s",
			fmtNum(rest[0].X), fmtNum(rest[0].Y),
			fmtNum(rest[1].X), fmtNum(rest[1].Y),
			fmtNum(rest[2].X), fmtNum(rest[2].Y))
		rest = rest[3:]
	}
	for _, p := range rest {
		fmt.Fprintf(&b, "L%s,%s", fmtNum(p.X), fmtNum(p.Y))
	}
	if e.End != nil {
		fmt.Fprintf(&b, "L%s,%s", fmtNum(e.End.X), fmtNum(e.End.Y))
	}
	return b.String()
}

func (e Element) clone() Element {
	if e.Points != nil {
		pts := make([]layout.Point, len(e.Points))
		copy(pts, e.Points)
		e.Points = pts
	}
	if e.End != nil {
		end := *e.End
		e.End = &end
	}
	if e.Children != nil {
		kids := make([]Element, len(e.Children))
		for i, c := range e.Children {
			kids[i] = c.clone()
		}
		e.Children = kids
	}
	return e
}

// Scene is a rendered graph: the drawing size reported by the layout and the
// root element.
type Scene struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Root   Element `json:"root"`
}

// Clone returns a deep copy.
func (s *Scene) Clone() *Scene {
	return &Scene{Width: s.Width, Height: s.Height, Root: s.Root.clone()}
}

// Map returns a copy of the scene with fn applied to every element in
// pre-order. fn may modify the element it receives, including its children,
// which are visited after fn returns.
func (s *Scene) Map(fn func(el *Element)) *Scene {
	out := s.Clone()
	walk(&out.Root, fn)
	return out
}

func walk(el *Element, fn func(*Element)) {
	fn(el)
	for i := range el.Children {
		walk(&el.Children[i], fn)
	}
}

// Walk calls fn for every element in pre-order without copying.
func (s *Scene) Walk(fn func(el Element)) {
	var visit func(el *Element)
	visit = func(el *Element) {
		fn(*el)
		for i := range el.Children {
			visit(&el.Children[i])
		}
	}
	visit(&s.Root)
}

// Append returns a copy of the scene with els added to the root, painted
// above everything else.
func (s *Scene) Append(els ...Element) *Scene {
	out := s.Clone()
	for _, el := range els {
		out.Root.Children = append(out.Root.Children, el.clone())
	}
	return out
}

// Find returns the first element, in pre-order, with the given class bound
// to the given node or group id.
func (s *Scene) Find(class, datum string) (Element, bool) {
	var found *Element
	var visit func(el *Element) bool
	visit = func(el *Element) bool {
		if el.Class == class && el.Datum == datum {
			found = el
			return true
		}
		for i := range el.Children {
			if visit(&el.Children[i]) {
				return true
			}
		}
		return false
	}
	if !visit(&s.Root) {
		return Element{}, false
	}
	return found.clone(), true
}

// FindAll returns copies of all elements with the given class.
func (s *Scene) FindAll(class string) []Element {
	var out []Element
	s.Walk(func(el Element) {
		if el.Class == class {
			out = append(out, el.clone())
		}
	})
	return out
}

// fmtNum formats a coordinate with at most two decimals.
func fmtNum(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
