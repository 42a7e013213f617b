// Package graph provides the wire format and the validated, immutable graph
// model consumed by the layout pipeline.
//
// # Wire Format
//
// A graph description is a [Document] with nodes, edges and optional groups:
//
//	{
//	  "nodes":  [{"id": "a", "label": "A", "color": "#fff"}],
//	  "edges":  [{"source": "a", "target": "b", "uid": "e1", "label": "A→B"}],
//	  "groups": [{"id": "g1", "label": "G1", "nodes": ["a", "b"]}]
//	}
//
// Documents decode from JSON or YAML with [Decode] and [ReadFile].
//
// # Building
//
// [Build] validates a Document and returns a [Graph]:
//
//	g, err := graph.Build(doc, graph.DefaultBuildOptions())
//	if errors.IsValidation(err) {
//	    // err names the offending node, edge or group
//	}
//
// Validation rejects duplicate ids, edges with unknown endpoints, groups with
// unknown members, group ids that collide with node ids, and nodes that
// belong to more than one group.
//
// # Edge Identity
//
// With multigraph semantics enabled (the default) each edge is identified by
// its uid, and edges without one receive the synthetic identity
// "source->target#n". With multigraph disabled an edge is identified by its
// ordered (source, target) pair and a later edge overwrites an earlier one.
//
// A [Graph] is immutable. Accessors return copies, and lookups by node id,
// edge identity, edge uid, edge pair and group id are O(1).
package graph
