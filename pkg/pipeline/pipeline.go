// Package pipeline provides the visualization pipeline for topovis.
//
// The CLI, the server and the explorer all run the same stages through a
// [Runner], so a graph renders identically wherever it is viewed.
//
// # Stages
//
//  1. fetch: read the description from a [source.Source]
//  2. build: validate it into a [graph.Graph]
//  3. layout: position nodes, clusters and edges with Graphviz
//  4. scene: draw the default scene
//  5. style: apply node fills, edge colors and labels
//  6. cluster: place one label above each cluster
//  7. viewport: center the scene once in the viewport
//
// Any fatal error aborts the run; no partial result is returned. Lookup
// misses in the style and cluster stages are collected in the [Result]
// instead of failing.
//
// # Usage
//
//	runner := pipeline.NewRunner(src, nil, logger)
//	result, err := runner.Run(ctx, pipeline.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	svg, err := result.Render(ctx, render.FormatSVG)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topovis/pkg/cluster"
	"github.com/matzehuels/topovis/pkg/fonts"
	"github.com/matzehuels/topovis/pkg/graph"
	"github.com/matzehuels/topovis/pkg/layout"
	"github.com/matzehuels/topovis/pkg/scene"
	"github.com/matzehuels/topovis/pkg/style"
	"github.com/matzehuels/topovis/pkg/viewport"
)

// Stage names, as reported to logs and hooks.
const (
	StageFetch    = "fetch"
	StageBuild    = "build"
	StageLayout   = "layout"
	StageScene    = "scene"
	StageStyle    = "style"
	StageCluster  = "cluster"
	StageViewport = "viewport"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options bundles the options of every stage.
type Options struct {
	Build    graph.BuildOptions `json:"build"`
	Layout   layout.Options     `json:"layout"`
	Style    style.Options      `json:"style"`
	Cluster  cluster.Options    `json:"cluster"`
	Viewport viewport.Config    `json:"viewport"`

	// Title names the HTML page.
	Title string `json:"title,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger        `json:"-"`
	Measurer fonts.TextMeasurer `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// DefaultOptions returns options with every stage at its defaults.
func DefaultOptions() Options {
	o := Options{Build: graph.DefaultBuildOptions()}
	o.setDefaults()
	return o
}

// ValidateAndSetDefaults applies defaults and validates every stage. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.setDefaults()
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	if err := o.Style.Validate(); err != nil {
		return err
	}
	if err := o.Cluster.Validate(); err != nil {
		return err
	}
	if err := o.Viewport.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Measurer == nil {
		o.Measurer = fonts.Default()
	}
	if o.Style.Measurer == nil {
		o.Style.Measurer = o.Measurer
	}
	if o.Cluster.Measurer == nil {
		o.Cluster.Measurer = o.Measurer
	}
	o.Build.SetDefaults()
	o.Layout.SetDefaults()
	o.Style.SetDefaults()
	o.Cluster.SetDefaults()
	o.Viewport.SetDefaults()
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Document is the fetched description.
	Document graph.Document

	// Graph is the validated graph model.
	Graph *graph.Graph

	// Layout is the positioned graph.
	Layout *layout.PositionedGraph

	// Scene is the styled scene with cluster labels.
	Scene *scene.Scene

	// Viewport holds the centered transform. It is owned by the caller from
	// here on.
	Viewport *viewport.Controller

	// Labels are the placed cluster labels.
	Labels []cluster.Label

	// Misses are style lookups that found no graph entity; Skipped are
	// groups that got no cluster label.
	Misses  []style.Miss
	Skipped []string

	// Bounds is the extent of the final scene, cluster labels included.
	Bounds layout.Rect

	// Title names the HTML page.
	Title string

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	GroupCount   int
	FetchTime    time.Duration
	BuildTime    time.Duration
	LayoutTime   time.Duration
	SceneTime    time.Duration
	StyleTime    time.Duration
	ClusterTime  time.Duration
	ViewportTime time.Duration
	Total        time.Duration
}
