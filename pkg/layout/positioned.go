package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/matzehuels/topovis/pkg/graph"
)

// =============================================================================
// Geometry
// =============================================================================

// Point is a position in drawing coordinates (y down).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle given by its top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Center returns the center point.
func (r Rect) Center() Point { return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2} }

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Union returns the smallest rectangle containing r and o. An empty rectangle
// with zero origin is treated as the identity.
func (r Rect) Union(o Rect) Rect {
	if r == (Rect{}) {
		return o
	}
	if o == (Rect{}) {
		return r
	}
	x0 := math.Min(r.X, o.X)
	y0 := math.Min(r.Y, o.Y)
	x1 := math.Max(r.MaxX(), o.MaxX())
	y1 := math.Max(r.MaxY(), o.MaxY())
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// =============================================================================
// PositionedGraph
// =============================================================================

// Box is a positioned node or group. X and Y are the center.
type Box struct {
	ID     string  `json:"id"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bounds returns the box as a top-left rectangle.
func (b Box) Bounds() Rect {
	return Rect{X: b.X - b.Width/2, Y: b.Y - b.Height/2, Width: b.Width, Height: b.Height}
}

// Route is a routed edge. Points starts at the tail and continues with cubic
// Bézier control point triples. End, when set, is the arrowhead tip.
type Route struct {
	Key      graph.EdgeKey `json:"key"`
	Label    string        `json:"label,omitempty"`
	Points   []Point       `json:"points"`
	End      *Point        `json:"end,omitempty"`
	LabelPos *Point        `json:"label_pos,omitempty"`
}

// PositionedGraph is the output of the layout engine, in input order.
type PositionedGraph struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Nodes  []Box   `json:"nodes"`
	Groups []Box   `json:"groups"`
	Edges  []Route `json:"edges"`

	nodeIdx  map[string]int
	groupIdx map[string]int
	edgeIdx  map[string]int
}

func (pg *PositionedGraph) reindex() {
	pg.nodeIdx = make(map[string]int, len(pg.Nodes))
	for i, n := range pg.Nodes {
		pg.nodeIdx[n.ID] = i
	}
	pg.groupIdx = make(map[string]int, len(pg.Groups))
	for i, grp := range pg.Groups {
		pg.groupIdx[grp.ID] = i
	}
	pg.edgeIdx = make(map[string]int, len(pg.Edges))
	for i, e := range pg.Edges {
		pg.edgeIdx[e.Key.ID] = i
	}
}

// Node returns the positioned node with the given id.
func (pg *PositionedGraph) Node(id string) (Box, bool) {
	return lookup(pg.Nodes, pg.nodeIdx, id, func(b Box) string { return b.ID })
}

// Group returns the positioned group with the given id.
func (pg *PositionedGraph) Group(id string) (Box, bool) {
	return lookup(pg.Groups, pg.groupIdx, id, func(b Box) string { return b.ID })
}

// Edge returns the route of the edge with the given identity.
func (pg *PositionedGraph) Edge(id string) (Route, bool) {
	return lookup(pg.Edges, pg.edgeIdx, id, func(r Route) string { return r.Key.ID })
}

// lookup uses the index when present and scans otherwise, which covers
// graphs decoded from JSON.
func lookup[T any](items []T, idx map[string]int, id string, key func(T) string) (T, bool) {
	if idx != nil {
		if i, ok := idx[id]; ok {
			return items[i], true
		}
		var zero T
		return zero, false
	}
	for _, it := range items {
		if key(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Bounds returns the drawing area.
func (pg *PositionedGraph) Bounds() Rect {
	return Rect{Width: pg.Width, Height: pg.Height}
}

// Marshal encodes the positioned graph as indented JSON.
func (pg *PositionedGraph) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(pg); err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	return buf.Bytes(), nil
}
