package graph_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/topovis/pkg/graph"
)

func ExampleBuild() {
	doc, _ := graph.Decode(strings.NewReader(`{
	  "nodes": [{"id": "a", "label": "A"}, {"id": "b", "label": "B"}],
	  "edges": [{"source": "a", "target": "b", "uid": "e1", "label": "A→B"}],
	  "groups": [{"id": "g1", "label": "G1", "nodes": ["a", "b"]}]
	}`), graph.FormatJSON)

	g, err := graph.Build(doc, graph.DefaultBuildOptions())
	if err != nil {
		fmt.Println(err)
		return
	}

	e, _ := g.EdgeByUID("e1")
	parent, _ := g.ParentOf("a")
	fmt.Println(g.NodeCount(), e.Label, parent)
	// Output: 2 A→B g1
}

func ExampleBuild_danglingEdge() {
	doc := graph.Document{
		Nodes: []graph.NodeSpec{{ID: "a"}},
		Edges: []graph.EdgeSpec{{Source: "a", Target: "b"}},
	}
	_, err := graph.Build(doc, graph.DefaultBuildOptions())
	fmt.Println(err)
	// Output: DANGLING_EDGE_REFERENCE: edge 0 (a->b) references unknown target node "b"
}
