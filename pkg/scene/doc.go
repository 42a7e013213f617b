// Package scene is the rendering surface: a tree of grouped shape elements
// built from a [layout.PositionedGraph] and later serialized by the sinks in
// pkg/render.
//
// # Structure
//
// [Render] produces the default presentation in paint order:
//
//	g.output
//	├── g.clusters    one g.cluster (rect) per group
//	├── g.edgePaths   one g.edgePath (path) per edge
//	├── g.edgeLabels  one g.edgeLabel (text) per labelled edge
//	└── g.nodes       one g.node (rect + g.label > text) per node
//
// Cluster, edge label and node groups are translated to their center, so
// their shapes are drawn around the origin.
//
// # Immutability
//
// Stages never modify a scene they receive. [Scene.Map] and [Scene.Append]
// return a modified deep copy.
//
// # Measurement
//
// [Scene.BBox] computes bounding boxes the way a browser's getBBox would,
// measuring text with the embedded fonts from pkg/fonts.
package scene
