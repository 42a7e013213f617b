package scene

import (
	"github.com/matzehuels/topovis/pkg/layout"
)

// Default presentation, before any domain styling.
var (
	DefaultClusterStyle = Style{Fill: "none", Stroke: "#999", StrokeWidth: 1}
	DefaultNodeStyle    = Style{Fill: "#fff", Stroke: "#333", StrokeWidth: 1.5}
	DefaultEdgeStyle    = Style{Fill: "none", Stroke: "#333", StrokeWidth: 1.5}
	DefaultLabelStyle   = Style{Fill: "#333", FontSize: 14}
)

// labelDY centers a single line of text vertically on its anchor.
const labelDY = 0.35

// Render builds the default scene for a positioned graph.
func Render(pg *layout.PositionedGraph) *Scene {
	clusters := Element{Kind: KindGroup, Class: ClassClusters}
	for _, grp := range pg.Groups {
		clusters.Children = append(clusters.Children, Element{
			Kind:  KindGroup,
			Class: ClassCluster,
			Datum: grp.ID,
			X:     grp.X,
			Y:     grp.Y,
			Children: []Element{{
				Kind:   KindRect,
				X:      -grp.Width / 2,
				Y:      -grp.Height / 2,
				Width:  grp.Width,
				Height: grp.Height,
				Style:  DefaultClusterStyle,
			}},
		})
	}

	paths := Element{Kind: KindGroup, Class: ClassEdgePaths}
	labels := Element{Kind: KindGroup, Class: ClassEdgeLabels}
	for _, r := range pg.Edges {
		path := Element{
			Kind:   KindPath,
			Class:  ClassPath,
			Edge:   r.Key,
			Points: r.Points,
			End:    r.End,
			Marker: MarkerArrowhead,
			Style:  DefaultEdgeStyle,
		}
		paths.Children = append(paths.Children, Element{
			Kind:     KindGroup,
			Class:    ClassEdgePath,
			Edge:     r.Key,
			Children: []Element{path},
		})

		if r.LabelPos == nil {
			continue
		}
		labels.Children = append(labels.Children, Element{
			Kind:  KindGroup,
			Class: ClassEdgeLabel,
			Edge:  r.Key,
			X:     r.LabelPos.X,
			Y:     r.LabelPos.Y,
			Children: []Element{
				textElement(r.Label, DefaultLabelStyle),
			},
		})
	}

	nodes := Element{Kind: KindGroup, Class: ClassNodes}
	for _, n := range pg.Nodes {
		nodes.Children = append(nodes.Children, Element{
			Kind:  KindGroup,
			Class: ClassNode,
			Datum: n.ID,
			X:     n.X,
			Y:     n.Y,
			Children: []Element{
				{
					Kind:   KindRect,
					X:      -n.Width / 2,
					Y:      -n.Height / 2,
					Width:  n.Width,
					Height: n.Height,
					Style:  DefaultNodeStyle,
				},
				{
					Kind:     KindGroup,
					Class:    ClassLabel,
					Children: []Element{textElement(n.Label, DefaultLabelStyle)},
				},
			},
		})
	}

	sc := &Scene{
		Width:  pg.Width,
		Height: pg.Height,
		Root: Element{
			Kind:     KindGroup,
			Class:    ClassOutput,
			Children: []Element{clusters, paths, labels, nodes},
		},
	}
	return sc.Clone()
}

// textElement returns a centered single-line text at the origin.
func textElement(text string, style Style) Element {
	return Element{
		Kind:   KindText,
		Text:   text,
		Anchor: "middle",
		DY:     labelDY * style.FontSize,
		Style:  style,
	}
}
