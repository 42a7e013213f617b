package graph

import (
	"fmt"
	"slices"
)

// Default node size in points, matching the rendered rect when no size is
// declared.
const (
	DefaultNodeWidth  = 250.0
	DefaultNodeHeight = 250.0
)

// Node is a validated node with its effective size.
type Node struct {
	ID     string
	Label  string
	Width  float64
	Height float64
	Color  string
}

// EdgeKey identifies an edge in the compound graph. ID is unique within a
// Graph: the uid (or synthetic uid) in multigraph mode, "source->target"
// otherwise.
type EdgeKey struct {
	Source string `json:"source"`
	Target string `json:"target"`
	ID     string `json:"id"`
}

// String returns the edge identity in a form suitable for messages.
func (k EdgeKey) String() string {
	if k.ID != "" {
		return k.ID
	}
	return pairID(k.Source, k.Target)
}

// Edge is a validated directed edge. UID is the declared uid, possibly empty.
type Edge struct {
	Key   EdgeKey
	UID   string
	Label string
	Color string
}

// Source returns the source node id.
func (e Edge) Source() string { return e.Key.Source }

// Target returns the target node id.
func (e Edge) Target() string { return e.Key.Target }

// Group is a validated cluster.
type Group struct {
	ID      string
	Label   string
	Members []string
}

// Graph is an immutable, validated graph with precomputed lookup indexes.
// The zero value is an empty graph; use [Build] to create one from a Document.
type Graph struct {
	nodes  []Node
	edges  []Edge
	groups []Group

	multigraph bool

	nodeIdx  map[string]int
	edgeIdx  map[string]int
	uidIdx   map[string]int
	pairIdx  map[[2]string]int
	groupIdx map[string]int
	parent   map[string]string
}

// Multigraph reports whether edges are identified by uid.
func (g *Graph) Multigraph() bool { return g.multigraph }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// GroupCount returns the number of groups.
func (g *Graph) GroupCount() int { return len(g.groups) }

// Nodes returns the nodes in declaration order.
func (g *Graph) Nodes() []Node { return slices.Clone(g.nodes) }

// Edges returns the edges in declaration order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Groups returns the groups in declaration order.
func (g *Graph) Groups() []Group {
	out := make([]Group, len(g.groups))
	for i, grp := range g.groups {
		out[i] = Group{ID: grp.ID, Label: grp.Label, Members: slices.Clone(grp.Members)}
	}
	return out
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.nodeIdx[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Edge returns the edge with the given identity (EdgeKey.ID).
func (g *Graph) Edge(id string) (Edge, bool) {
	i, ok := g.edgeIdx[id]
	if !ok {
		return Edge{}, false
	}
	return g.edges[i], true
}

// EdgeByUID returns the edge declared with the given uid.
func (g *Graph) EdgeByUID(uid string) (Edge, bool) {
	i, ok := g.uidIdx[uid]
	if !ok {
		return Edge{}, false
	}
	return g.edges[i], true
}

// EdgeByPair returns the first edge from source to target.
func (g *Graph) EdgeByPair(source, target string) (Edge, bool) {
	i, ok := g.pairIdx[[2]string{source, target}]
	if !ok {
		return Edge{}, false
	}
	return g.edges[i], true
}

// Group returns the group with the given id.
func (g *Graph) Group(id string) (Group, bool) {
	i, ok := g.groupIdx[id]
	if !ok {
		return Group{}, false
	}
	grp := g.groups[i]
	grp.Members = slices.Clone(grp.Members)
	return grp, true
}

// ParentOf returns the id of the group containing the node, if any.
func (g *Graph) ParentOf(nodeID string) (string, bool) {
	p, ok := g.parent[nodeID]
	return p, ok
}

// Parents returns a copy of the node id to group id mapping.
func (g *Graph) Parents() map[string]string {
	out := make(map[string]string, len(g.parent))
	for k, v := range g.parent {
		out[k] = v
	}
	return out
}

func pairID(source, target string) string {
	return source + "->" + target
}

func syntheticID(source, target string, n int) string {
	return fmt.Sprintf("%s#%d", pairID(source, target), n)
}
