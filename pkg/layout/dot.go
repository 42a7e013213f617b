package layout

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/topovis/pkg/graph"
)

const pointsPerInch = 72.0

// Compound is the parent/child structure handed to the layout engine. Group
// ids share the node namespace, so Parents maps a node id to a group id.
type Compound struct {
	Parents  map[string]string
	Children map[string][]string
}

// BuildCompound derives the compound structure of g. Every grouped node has
// exactly one parent.
func BuildCompound(g *graph.Graph) Compound {
	c := Compound{
		Parents:  make(map[string]string),
		Children: make(map[string][]string),
	}
	for _, grp := range g.Groups() {
		c.Children[grp.ID] = grp.Members
		for _, m := range grp.Members {
			c.Parents[m] = grp.ID
		}
	}
	return c
}

// DOT names are synthetic so that no id can collide with a cluster name or
// need escaping; entities are mapped back by index.

// nodeName returns the DOT name of the i-th node.
func nodeName(i int) string {
	return "n" + strconv.Itoa(i)
}

// placeholderName returns the DOT name of the placeholder of the i-th group.
func placeholderName(i int) string {
	return "p" + strconv.Itoa(i)
}

// clusterName returns the subgraph name of the i-th group. Graphviz only
// draws subgraphs whose name starts with "cluster".
func clusterName(i int) string {
	return "cluster_" + strconv.Itoa(i)
}

// edgeID returns the id attribute of the i-th edge.
func edgeID(i int) string {
	return "e" + strconv.Itoa(i)
}

// dotEscaper escapes a string for a quoted DOT label. Backslashes are
// doubled so that Graphviz escapes such as \N stay literal.
var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")

func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

// ToDOT converts a graph to Graphviz DOT for the layered layout.
//
// Nodes are declared first in input order, then one cluster subgraph per
// group lists its members, then the edges. A group without members gets an
// invisible placeholder so that its region survives.
func ToDOT(g *graph.Graph, opts Options) string {
	opts.SetDefaults()

	nodes := g.Nodes()
	names := make(map[string]string, len(nodes))
	for i, n := range nodes {
		names[n.ID] = nodeName(i)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", RankDir)
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(opts.NodeSep))
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(opts.RankSep))
	buf.WriteString("  node [shape=box, fixedsize=true];\n")
	buf.WriteString("\n")

	for i, n := range nodes {
		fmt.Fprintf(&buf, "  %s [label=%s, width=%s, height=%s];\n",
			nodeName(i), quote(n.Label), inches(n.Width), inches(n.Height))
	}

	for i, grp := range g.Groups() {
		buf.WriteString("\n")
		fmt.Fprintf(&buf, "  subgraph %s {\n", clusterName(i))
		buf.WriteString("    label=\"\";\n")
		fmt.Fprintf(&buf, "    margin=%s;\n", num(opts.ClusterMargin))
		if len(grp.Members) == 0 {
			fmt.Fprintf(&buf, "    %s [label=\"\", style=invis, width=%s, height=%s];\n",
				placeholderName(i), inches(opts.EmptyGroupWidth), inches(opts.EmptyGroupHeight))
		}
		for _, m := range grp.Members {
			fmt.Fprintf(&buf, "    %s;\n", names[m])
		}
		buf.WriteString("  }\n")
	}

	if g.EdgeCount() > 0 {
		buf.WriteString("\n")
	}
	for i, e := range g.Edges() {
		attrs := []string{fmt.Sprintf("id=%s", quote(edgeID(i)))}
		if e.Label != "" {
			attrs = append(attrs, "label="+quote(e.Label))
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", names[e.Source()], names[e.Target()], strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func inches(points float64) string {
	return num(points / pointsPerInch)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
