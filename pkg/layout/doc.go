// Package layout turns a [graph.Graph] into a [PositionedGraph] using the
// Graphviz dot layered layout.
//
// # Architecture
//
// The adapter works in three steps:
//
//	Graph → ToDOT() → DOT → Engine.Run() → Graphviz JSON → decode → PositionedGraph
//
// Groups become cluster subgraphs, so Graphviz sizes each cluster region from
// the nodes it contains. Nodes are fixed-size boxes with their declared
// dimensions. Ranks flow left to right. Every edge carries an `id` attribute
// holding its ordinal so that routes can be matched back to the domain edge
// even when several edges join the same pair of nodes.
//
// # Coordinates
//
// Graphviz reports points with the origin at the bottom-left. The adapter
// flips them so that the origin is the top-left corner of the drawing and y
// grows downward. Node and group positions are box centers.
//
// # Usage
//
//	a := layout.New(layout.DefaultOptions())
//	pg, err := a.Layout(ctx, g)
//	if errors.IsLayout(err) {
//	    // no partial layout is ever returned
//	}
//
// Tests and tools can replace the engine with [NewWithEngine].
package layout
