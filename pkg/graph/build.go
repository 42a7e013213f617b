package graph

import (
	"github.com/matzehuels/topovis/pkg/errors"
)

// BuildOptions controls how a Document is normalized into a Graph.
type BuildOptions struct {
	// Multigraph identifies edges by uid so parallel edges are kept apart.
	// When false, later edges overwrite earlier ones with the same pair.
	Multigraph bool `toml:"multigraph" json:"multigraph"`

	// DefaultNodeWidth and DefaultNodeHeight replace undeclared sizes.
	DefaultNodeWidth  float64 `toml:"node_width" json:"node_width" validate:"gte=0"`
	DefaultNodeHeight float64 `toml:"node_height" json:"node_height" validate:"gte=0"`
}

// DefaultBuildOptions returns multigraph semantics with 250x250 nodes.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		Multigraph:        true,
		DefaultNodeWidth:  DefaultNodeWidth,
		DefaultNodeHeight: DefaultNodeHeight,
	}
}

// SetDefaults fills zero sizes with the package defaults.
func (o *BuildOptions) SetDefaults() {
	if o.DefaultNodeWidth == 0 {
		o.DefaultNodeWidth = DefaultNodeWidth
	}
	if o.DefaultNodeHeight == 0 {
		o.DefaultNodeHeight = DefaultNodeHeight
	}
}

// Build validates doc and returns an immutable Graph. The document is not
// modified. All returned errors are *errors.Error with a validation code
// that names the offending entity.
func Build(doc Document, opts BuildOptions) (*Graph, error) {
	opts.SetDefaults()

	groups := make([]GroupSpec, 0, len(doc.Groups))
	for _, gs := range doc.Groups {
		if !gs.IsEmpty() {
			groups = append(groups, gs)
		}
	}

	checked := Document{Nodes: doc.Nodes, Edges: doc.Edges, Groups: groups}
	if err := errors.ValidateStruct(checked, errors.ErrCodeInvalidInput); err != nil {
		return nil, err
	}

	g := &Graph{
		multigraph: opts.Multigraph,
		nodes:      make([]Node, 0, len(doc.Nodes)),
		nodeIdx:    make(map[string]int, len(doc.Nodes)),
		groupIdx:   make(map[string]int, len(groups)),
		parent:     make(map[string]string),
	}

	if err := g.addNodes(doc.Nodes, opts); err != nil {
		return nil, err
	}
	if err := g.addGroups(groups); err != nil {
		return nil, err
	}
	if err := g.addEdges(doc.Edges); err != nil {
		return nil, err
	}
	g.index()
	return g, nil
}

func (g *Graph) addNodes(specs []NodeSpec, opts BuildOptions) error {
	for _, ns := range specs {
		if err := errors.ValidateID("node", ns.ID); err != nil {
			return err
		}
		if _, dup := g.nodeIdx[ns.ID]; dup {
			return errors.New(errors.ErrCodeDuplicateID, "duplicate node id %q", ns.ID)
		}
		n := Node{ID: ns.ID, Label: ns.Label, Width: ns.Width, Height: ns.Height, Color: ns.Color}
		if n.Width == 0 {
			n.Width = opts.DefaultNodeWidth
		}
		if n.Height == 0 {
			n.Height = opts.DefaultNodeHeight
		}
		g.nodeIdx[n.ID] = len(g.nodes)
		g.nodes = append(g.nodes, n)
	}
	return nil
}

func (g *Graph) addGroups(specs []GroupSpec) error {
	g.groups = make([]Group, 0, len(specs))
	for _, gs := range specs {
		if err := errors.ValidateID("group", gs.ID); err != nil {
			return err
		}
		if _, ok := g.nodeIdx[gs.ID]; ok {
			return errors.New(errors.ErrCodeGroupIDCollision, "group id %q collides with a node id", gs.ID)
		}
		if _, ok := g.groupIdx[gs.ID]; ok {
			return errors.New(errors.ErrCodeGroupIDCollision, "duplicate group id %q", gs.ID)
		}

		grp := Group{ID: gs.ID, Label: gs.Label, Members: make([]string, 0, len(gs.Nodes))}
		seen := make(map[string]bool, len(gs.Nodes))
		for _, m := range gs.Nodes {
			if _, ok := g.nodeIdx[m]; !ok {
				return errors.New(errors.ErrCodeDanglingGroupMember, "group %q references unknown node %q", gs.ID, m)
			}
			if seen[m] {
				continue
			}
			if other, ok := g.parent[m]; ok {
				return errors.New(errors.ErrCodeMultipleParents, "node %q belongs to groups %q and %q", m, other, gs.ID)
			}
			seen[m] = true
			g.parent[m] = gs.ID
			grp.Members = append(grp.Members, m)
		}
		g.groupIdx[grp.ID] = len(g.groups)
		g.groups = append(g.groups, grp)
	}
	return nil
}

func (g *Graph) addEdges(specs []EdgeSpec) error {
	g.edges = make([]Edge, 0, len(specs))
	g.edgeIdx = make(map[string]int, len(specs))
	synthetic := make(map[[2]string]int)

	// Declared uids win over synthetic ids of the same text.
	declared := make(map[string]bool)
	if g.multigraph {
		for _, es := range specs {
			if es.UID != "" {
				declared[es.UID] = true
			}
		}
	}

	for i, es := range specs {
		if _, ok := g.nodeIdx[es.Source]; !ok {
			return errors.New(errors.ErrCodeDanglingEdgeReference,
				"edge %d (%s) references unknown source node %q", i, describe(es), es.Source)
		}
		if _, ok := g.nodeIdx[es.Target]; !ok {
			return errors.New(errors.ErrCodeDanglingEdgeReference,
				"edge %d (%s) references unknown target node %q", i, describe(es), es.Target)
		}

		e := Edge{
			Key:   EdgeKey{Source: es.Source, Target: es.Target},
			UID:   es.UID,
			Label: es.Label,
			Color: es.Color,
		}

		if !g.multigraph {
			e.Key.ID = pairID(es.Source, es.Target)
			if at, ok := g.edgeIdx[e.Key.ID]; ok {
				g.edges[at] = e
				continue
			}
			g.edgeIdx[e.Key.ID] = len(g.edges)
			g.edges = append(g.edges, e)
			continue
		}

		if es.UID != "" {
			e.Key.ID = es.UID
		} else {
			pair := [2]string{es.Source, es.Target}
			for {
				e.Key.ID = syntheticID(es.Source, es.Target, synthetic[pair])
				synthetic[pair]++
				if _, taken := g.edgeIdx[e.Key.ID]; !taken && !declared[e.Key.ID] {
					break
				}
			}
		}
		if _, dup := g.edgeIdx[e.Key.ID]; dup {
			return errors.New(errors.ErrCodeDuplicateEdgeUID, "duplicate edge uid %q", e.Key.ID)
		}
		g.edgeIdx[e.Key.ID] = len(g.edges)
		g.edges = append(g.edges, e)
	}
	return nil
}

// index builds the secondary edge lookups once the edge list is final.
func (g *Graph) index() {
	g.uidIdx = make(map[string]int, len(g.edges))
	g.pairIdx = make(map[[2]string]int, len(g.edges))
	for i, e := range g.edges {
		if e.UID != "" {
			if _, ok := g.uidIdx[e.UID]; !ok {
				g.uidIdx[e.UID] = i
			}
		}
		pair := [2]string{e.Key.Source, e.Key.Target}
		if _, ok := g.pairIdx[pair]; !ok {
			g.pairIdx[pair] = i
		}
	}
}

func describe(es EdgeSpec) string {
	if es.UID != "" {
		return es.UID
	}
	return pairID(es.Source, es.Target)
}
