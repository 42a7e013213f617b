package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/topovis/pkg/cluster"
	"github.com/matzehuels/topovis/pkg/graph"
	"github.com/matzehuels/topovis/pkg/layout"
	"github.com/matzehuels/topovis/pkg/observability"
	"github.com/matzehuels/topovis/pkg/scene"
	"github.com/matzehuels/topovis/pkg/source"
	"github.com/matzehuels/topovis/pkg/style"
	"github.com/matzehuels/topovis/pkg/viewport"
)

// Runner executes the pipeline against one source.
//
// The Runner keeps no per-run state, so several goroutines can share one
// Runner; every run owns its graph, scene and viewport.
type Runner struct {
	Source source.Source
	Engine layout.Engine
	Logger *log.Logger
}

// NewRunner creates a runner. A nil engine uses Graphviz; a nil logger uses
// the default logger.
func NewRunner(src source.Source, engine layout.Engine, logger *log.Logger) *Runner {
	if engine == nil {
		engine = layout.GraphvizEngine{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Source: src, Engine: engine, Logger: logger}
}

// run carries the bookkeeping of one execution.
type run struct {
	ctx    context.Context
	id     string
	logger *log.Logger
	hooks  observability.PipelineHooks
}

func (r *run) stage(name string, fn func() error) (time.Duration, error) {
	r.hooks.OnStageStart(r.ctx, r.id, name)
	start := time.Now()
	err := fn()
	d := time.Since(start)
	r.hooks.OnStageComplete(r.ctx, r.id, name, d, err)
	if err != nil {
		r.logger.Error("stage failed", "stage", name, "err", err)
	}
	return d, err
}

func (r *Runner) newRun(ctx context.Context, opts Options) *run {
	id := uuid.NewString()
	return &run{
		ctx:    ctx,
		id:     id,
		logger: opts.Logger.With("run", id[:8]),
		hooks:  observability.Pipeline(),
	}
}

// Run fetches the description from the runner's source and runs every
// stage.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if r.Source == nil {
		return nil, fmt.Errorf("pipeline: no source configured")
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	rn := r.newRun(ctx, opts)
	start := time.Now()

	var doc graph.Document
	fetchTime, err := rn.stage(StageFetch, func() error {
		var err error
		doc, err = r.Source.Fetch(ctx)
		return err
	})
	if err != nil {
		rn.hooks.OnRunComplete(ctx, rn.id, 0, 0, time.Since(start), err)
		return nil, fmt.Errorf("fetch %s: %w", r.Source, err)
	}
	rn.logger.Debug("fetched graph description", "source", r.Source.String(), "duration", fetchTime)

	res, err := r.process(rn, doc, opts, start)
	if err != nil {
		return nil, err
	}
	res.Stats.FetchTime = fetchTime
	return res, nil
}

// RunDocument runs every stage after fetch on doc.
func (r *Runner) RunDocument(ctx context.Context, doc graph.Document, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return r.process(r.newRun(ctx, opts), doc, opts, time.Now())
}

func (r *Runner) process(rn *run, doc graph.Document, opts Options, start time.Time) (_ *Result, err error) {
	res := &Result{RunID: rn.id, Document: doc, Title: opts.Title}
	defer func() {
		res.Stats.Total = time.Since(start)
		rn.hooks.OnRunComplete(rn.ctx, rn.id, res.Stats.NodeCount, res.Stats.EdgeCount, res.Stats.Total, err)
	}()

	// Stage: build
	res.Stats.BuildTime, err = rn.stage(StageBuild, func() error {
		g, err := graph.Build(doc, opts.Build)
		res.Graph = g
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	res.Stats.NodeCount = res.Graph.NodeCount()
	res.Stats.EdgeCount = res.Graph.EdgeCount()
	res.Stats.GroupCount = res.Graph.GroupCount()
	rn.logger.Info("built graph",
		"nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount,
		"groups", res.Stats.GroupCount)

	// Stage: layout
	res.Stats.LayoutTime, err = rn.stage(StageLayout, func() error {
		pg, err := layout.NewWithEngine(r.Engine, opts.Layout).Layout(rn.ctx, res.Graph)
		res.Layout = pg
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	rn.logger.Info("computed layout",
		"width", res.Layout.Width,
		"height", res.Layout.Height,
		"duration", res.Stats.LayoutTime)

	// Stage: scene
	var sc *scene.Scene
	res.Stats.SceneTime, _ = rn.stage(StageScene, func() error {
		sc = scene.Render(res.Layout)
		return nil
	})

	// Stage: style
	res.Stats.StyleTime, _ = rn.stage(StageStyle, func() error {
		styled := style.Apply(sc, res.Graph, res.Layout, opts.Style)
		sc, res.Misses = styled.Scene, styled.Misses
		return nil
	})
	for _, m := range res.Misses {
		rn.logger.Warn("style lookup missed", "class", m.Class, "id", m.ID)
	}

	// Stage: cluster
	res.Stats.ClusterTime, _ = rn.stage(StageCluster, func() error {
		placed := cluster.PlaceLabels(sc, res.Graph, res.Layout, opts.Cluster)
		sc, res.Labels, res.Skipped = placed.Scene, placed.Labels, placed.Skipped
		return nil
	})
	for _, id := range res.Skipped {
		rn.logger.Warn("cluster label skipped", "group", id)
	}
	res.Scene = sc

	// Stage: viewport
	res.Stats.ViewportTime, _ = rn.stage(StageViewport, func() error {
		res.Bounds = sc.Bounds(opts.Measurer)
		res.Viewport = viewport.NewWithConfig(opts.Viewport)
		res.Viewport.CenterOn(res.Bounds)
		return nil
	})
	rn.logger.Debug("centered viewport", "transform", res.Viewport.Transform().String())

	return res, nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
