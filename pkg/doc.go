// Package pkg provides the core libraries for topovis graph topology drawing.
//
// # Overview
//
// topovis turns a node, edge and group description into a left-to-right
// drawing: Graphviz computes positions, each group becomes a labeled
// cluster, edges keep their own stroke color, and a pan and zoom viewport
// starts centered on the result.
//
// # Architecture
//
// The data flow of one run:
//
//	Graph description (file, HTTP, Redis, MongoDB)
//	         ↓
//	    [source] package (fetch and decode)
//	         ↓
//	    [graph] package (validate into a graph model)
//	         ↓
//	    [layout] package (DOT in, positioned graph out)
//	         ↓
//	    [scene] + [style] + [cluster] packages (drawable elements)
//	         ↓
//	    [viewport] package (initial centering, zoom extent)
//	         ↓
//	    [render] package (SVG, HTML, JSON, PNG, PDF)
//
// [pipeline] runs these stages for the CLI and the server so both produce
// the same output for the same input.
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/topovis/pkg/layout"
//	    "github.com/matzehuels/topovis/pkg/pipeline"
//	    "github.com/matzehuels/topovis/pkg/render"
//	    "github.com/matzehuels/topovis/pkg/source"
//	)
//
//	runner := pipeline.NewRunner(source.NewFile("net.yaml"), layout.GraphvizEngine{}, logger)
//	res, err := runner.Run(ctx, pipeline.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	svg, err := res.Render(ctx, render.FormatSVG)
//
// # Main Packages
//
// [graph] - Wire format (JSON and YAML) and the immutable graph model. Build
// rejects dangling references, duplicate ids and nodes in two groups.
//
// [layout] - DOT generation and the Graphviz engine. Results are cached by
// the hash of the DOT input.
//
// [style], [cluster], [scene] - Edge style lookup, cluster label placement
// and the element tree the renderers draw.
//
// [viewport] - Transform state with the [0.1, 3] zoom extent.
//
// ## Infrastructure
//
// [cache] - Opt-in file and Redis byte caches for computed layouts.
//
// [config] - The TOML config file.
//
// [server] - HTTP server for the page, the graph data and metrics.
//
// [observability] - Pipeline, cache and HTTP hooks with Prometheus metrics.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -run Graphviz ./pkg/layout   # Needs the embedded Graphviz
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/topovis/pkg/graph
// [layout]: https://pkg.go.dev/github.com/matzehuels/topovis/pkg/layout
// [scene]: https://pkg.go.dev/github.com/matzehuels/topovis/pkg/scene
// [style]: https://pkg.go.dev/github.com/matzehuels/topovis/pkg/style
// [cluster]: https://pkg.go.dev/github.com/matzehuels/topovis/pkg/cluster
// [viewport]: https://pkg.go.dev/github.com/matzehuels/topovis/pkg/viewport
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/topovis/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/topovis/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/topovis/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/topovis/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/topovis/pkg/observability
//
// [source]: https://pkg.go.dev/github.com/matzehuels/topovis/pkg/source
// [render]: https://pkg.go.dev/github.com/matzehuels/topovis/pkg/render
package pkg
