package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/topovis/pkg/graph"
)

// attr is a Graphviz attribute value. Graphviz writes attributes as strings,
// but a few keys are numbers, so both are accepted.
type attr string

func (a *attr) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = attr(s)
		return nil
	}
	*a = attr(strings.TrimSpace(string(b)))
	return nil
}

// gvGraph is the subset of the Graphviz -Tjson output that the adapter reads.
type gvGraph struct {
	BB      attr       `json:"bb"`
	Objects []gvObject `json:"objects"`
	Edges   []gvEdge   `json:"edges"`
}

type gvObject struct {
	Name   attr `json:"name"`
	BB     attr `json:"bb"`
	Pos    attr `json:"pos"`
	Width  attr `json:"width"`
	Height attr `json:"height"`
	Label  attr `json:"label"`
}

type gvEdge struct {
	ID    attr `json:"id"`
	Pos   attr `json:"pos"`
	LP    attr `json:"lp"`
	Label attr `json:"label"`
}

// frame converts Graphviz points (origin bottom-left) to drawing coordinates
// (origin top-left).
type frame struct {
	minX, maxY float64
}

func (f frame) point(x, y float64) Point {
	return Point{X: round2(x - f.minX), Y: round2(f.maxY - y)}
}

// decode parses Graphviz JSON output and matches every entity of g. It fails
// if any node, group or edge is missing from the output.
func decode(data []byte, g *graph.Graph) (*PositionedGraph, error) {
	var out gvGraph
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode graphviz output: %w", err)
	}

	bb, err := parseFloats(string(out.BB), 4)
	if err != nil {
		return nil, fmt.Errorf("graph bounding box: %w", err)
	}
	f := frame{minX: bb[0], maxY: bb[3]}

	byName := make(map[string]gvObject, len(out.Objects))
	for _, obj := range out.Objects {
		byName[string(obj.Name)] = obj
	}
	byID := make(map[string]gvEdge, len(out.Edges))
	for _, e := range out.Edges {
		if e.ID != "" {
			byID[string(e.ID)] = e
		}
	}

	pg := &PositionedGraph{
		Width:  round2(bb[2] - bb[0]),
		Height: round2(bb[3] - bb[1]),
		Nodes:  make([]Box, 0, g.NodeCount()),
		Groups: make([]Box, 0, g.GroupCount()),
		Edges:  make([]Route, 0, g.EdgeCount()),
	}

	for i, n := range g.Nodes() {
		obj, ok := byName[nodeName(i)]
		if !ok || obj.Pos == "" {
			return nil, fmt.Errorf("node %q missing from layout", n.ID)
		}
		box, err := nodeBox(obj, f)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
		box.ID = n.ID
		pg.Nodes = append(pg.Nodes, box)
	}

	for i, grp := range g.Groups() {
		obj, ok := byName[clusterName(i)]
		if !ok || obj.BB == "" {
			return nil, fmt.Errorf("group %q missing from layout", grp.ID)
		}
		r, err := parseFloats(string(obj.BB), 4)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", grp.ID, err)
		}
		tl := f.point(r[0], r[3])
		br := f.point(r[2], r[1])
		w, h := br.X-tl.X, br.Y-tl.Y
		pg.Groups = append(pg.Groups, Box{
			ID:     grp.ID,
			X:      round2(tl.X + w/2),
			Y:      round2(tl.Y + h/2),
			Width:  round2(w),
			Height: round2(h),
		})
	}

	for i, e := range g.Edges() {
		gve, ok := byID[edgeID(i)]
		if !ok || gve.Pos == "" {
			return nil, fmt.Errorf("edge %s missing from layout", e.Key)
		}
		route, err := edgeRoute(gve, f)
		if err != nil {
			return nil, fmt.Errorf("edge %s: %w", e.Key, err)
		}
		route.Key = e.Key
		pg.Edges = append(pg.Edges, route)
	}

	pg.reindex()
	return pg, nil
}

func nodeBox(obj gvObject, f frame) (Box, error) {
	pos, err := parseFloats(string(obj.Pos), 2)
	if err != nil {
		return Box{}, fmt.Errorf("pos: %w", err)
	}
	w, err := strconv.ParseFloat(string(obj.Width), 64)
	if err != nil {
		return Box{}, fmt.Errorf("width: %w", err)
	}
	h, err := strconv.ParseFloat(string(obj.Height), 64)
	if err != nil {
		return Box{}, fmt.Errorf("height: %w", err)
	}
	c := f.point(pos[0], pos[1])
	return Box{
		Label:  unescapeLabel(string(obj.Label)),
		X:      c.X,
		Y:      c.Y,
		Width:  round2(w * pointsPerInch),
		Height: round2(h * pointsPerInch),
	}, nil
}

// edgeRoute parses a spline of the form "[s,x,y] [e,x,y] p0 p1 ...".
func edgeRoute(e gvEdge, f frame) (Route, error) {
	var r Route
	// Multiple splines are separated by ';'; the first is the drawn route.
	spline := strings.SplitN(string(e.Pos), ";", 2)[0]
	for _, tok := range strings.Fields(spline) {
		switch {
		case strings.HasPrefix(tok, "e,"):
			xy, err := parseFloats(tok[2:], 2)
			if err != nil {
				return Route{}, fmt.Errorf("end point: %w", err)
			}
			p := f.point(xy[0], xy[1])
			r.End = &p
		case strings.HasPrefix(tok, "s,"):
			// Arrow tails are not drawn.
		default:
			xy, err := parseFloats(tok, 2)
			if err != nil {
				return Route{}, fmt.Errorf("control point: %w", err)
			}
			r.Points = append(r.Points, f.point(xy[0], xy[1]))
		}
	}
	if len(r.Points) == 0 {
		return Route{}, fmt.Errorf("empty route")
	}
	if e.LP != "" {
		xy, err := parseFloats(string(e.LP), 2)
		if err != nil {
			return Route{}, fmt.Errorf("label position: %w", err)
		}
		p := f.point(xy[0], xy[1])
		r.LabelPos = &p
	}
	r.Label = unescapeLabel(string(e.Label))
	return r, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) < n {
		return nil, fmt.Errorf("expected %d values in %q", n, s)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}

// unescapeLabel turns Graphviz line-break escapes back into newlines.
func unescapeLabel(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n', 'l', 'r':
			b.WriteByte('\n')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
