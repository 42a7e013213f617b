package scene

import (
	"math"

	"github.com/matzehuels/topovis/pkg/fonts"
	"github.com/matzehuels/topovis/pkg/layout"
)

// BBox returns the bounding box of el in its parent's coordinate system,
// including the element's own translation when it is a group. Text is
// measured with m. An element with no extent returns an empty Rect and false.
func BBox(el Element, m fonts.TextMeasurer) (layout.Rect, bool) {
	switch el.Kind {
	case KindRect:
		return layout.Rect{X: el.X, Y: el.Y, Width: el.Width, Height: el.Height}, true

	case KindCircle:
		return layout.Rect{X: el.X - el.R, Y: el.Y - el.R, Width: 2 * el.R, Height: 2 * el.R}, true

	case KindPath:
		pts := el.Points
		if el.End != nil {
			pts = append(pts[:len(pts):len(pts)], *el.End)
		}
		if len(pts) == 0 {
			return layout.Rect{}, false
		}
		x0, y0 := math.Inf(1), math.Inf(1)
		x1, y1 := math.Inf(-1), math.Inf(-1)
		for _, p := range pts {
			x0, y0 = math.Min(x0, p.X), math.Min(y0, p.Y)
			x1, y1 = math.Max(x1, p.X), math.Max(y1, p.Y)
		}
		return layout.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, true

	case KindText:
		if el.Text == "" {
			return layout.Rect{}, false
		}
		tm := m.Measure(el.Text, el.Style.FontSize, fonts.ParseWeight(el.Style.FontWeight))
		x := el.X
		switch el.Anchor {
		case "middle":
			x -= tm.Width / 2
		case "end":
			x -= tm.Width
		}
		baseline := el.Y + el.DY
		return layout.Rect{X: x, Y: baseline - tm.Ascent, Width: tm.Width, Height: tm.Height()}, true

	case KindGroup:
		var box layout.Rect
		found := false
		for _, c := range el.Children {
			cb, ok := BBox(c, m)
			if !ok {
				continue
			}
			if !found {
				box, found = cb, true
				continue
			}
			box = union(box, cb)
		}
		if !found {
			return layout.Rect{}, false
		}
		return box.Translate(el.X, el.Y), true
	}
	return layout.Rect{}, false
}

// union merges two non-empty boxes. Unlike Rect.Union it does not treat a
// zero rect at the origin as empty.
func union(a, b layout.Rect) layout.Rect {
	x0 := math.Min(a.X, b.X)
	y0 := math.Min(a.Y, b.Y)
	x1 := math.Max(a.MaxX(), b.MaxX())
	y1 := math.Max(a.MaxY(), b.MaxY())
	return layout.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Bounds returns the bounding box of everything drawn in the scene.
func (s *Scene) Bounds(m fonts.TextMeasurer) layout.Rect {
	box, ok := BBox(s.Root, m)
	if !ok {
		return layout.Rect{Width: s.Width, Height: s.Height}
	}
	return box
}
