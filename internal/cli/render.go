package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topovis/pkg/pipeline"
	"github.com/matzehuels/topovis/pkg/render"
	"github.com/matzehuels/topovis/pkg/source"
	"github.com/matzehuels/topovis/pkg/style"
)

// renderOpts holds the render command flags that are not pipeline options.
type renderOpts struct {
	output  string
	formats string
	noCache bool
	watch   bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var ro renderOpts
	var sf styleFlags

	cmd := &cobra.Command{
		Use:   "render [source]",
		Short: "Render a graph to SVG, HTML, JSON, PNG or PDF",
		Long: `Render a graph description to one or more files.

The source is a file (JSON or YAML), an http(s) endpoint serving /graph_data,
a redis:// key, or a mongodb:// record. Without a source, the [source]
section of the config file is used.

PNG and PDF output require rsvg-convert on the PATH.

With --watch, a file source is re-rendered whenever it changes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(ro.formats)
			if err != nil {
				return err
			}
			if ro.output == "-" && len(formats) > 1 {
				return fmt.Errorf("--output - needs a single format")
			}
			return c.runRender(cmd, firstArg(args), formats, ro, sf)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file, base path for several formats, or - for stdout")
	cmd.Flags().StringVarP(&ro.formats, "format", "f", "", "output format(s): svg (default), html, json, png, pdf (comma-separated)")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVarP(&ro.watch, "watch", "w", false, "re-render when the source file changes")
	sf.register(cmd)

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, arg string, formats []render.Format, ro renderOpts, sf styleFlags) error {
	ctx := cmd.Context()
	sess, err := c.newSession(ctx, arg, runnerOpts{noCache: ro.noCache})
	if err != nil {
		return err
	}
	defer sess.Close(context.WithoutCancel(ctx))

	opts := sess.opts
	sf.apply(cmd, &opts)

	renderOnce := func() error {
		return c.renderTo(ctx, sess, opts, formats, ro.output, cmd.OutOrStdout())
	}
	if err := renderOnce(); err != nil {
		return err
	}
	if !ro.watch {
		return nil
	}
	if sess.src.Type != source.TypeFile {
		return fmt.Errorf("--watch needs a file source, got %s", sess.src.Type)
	}
	return watchFile(ctx, sess.src.Path, renderOnce)
}

// renderTo runs the pipeline once and writes every format. An output of "-"
// streams each format to stdout in order and skips the summary.
func (c *CLI) renderTo(ctx context.Context, sess *session, opts pipeline.Options, formats []render.Format, output string, stdout io.Writer) error {
	sp := startSpinner(ctx, os.Stderr, "Rendering "+sess.runner.Source.String())
	res, err := sess.runner.Run(ctx, opts)
	if err != nil {
		if sp.interrupted() {
			sp.stop()
			return err
		}
		sp.fail("Render failed")
		return err
	}

	encoded := make([][]byte, len(formats))
	for i, f := range formats {
		sp.setStage(string(f))
		if encoded[i], err = res.Render(ctx, f); err != nil {
			sp.fail("Render failed")
			return fmt.Errorf("render %s: %w", f, err)
		}
	}
	sp.stop()

	for _, m := range res.Misses {
		if output == "-" {
			c.Logger.Warn("no graph entity", "element", m)
			continue
		}
		printWarning("no graph entity for %s", m)
	}

	if output == "-" {
		for i, f := range formats {
			if _, err := stdout.Write(encoded[i]); err != nil {
				return fmt.Errorf("write %s: %w", f, err)
			}
		}
		return nil
	}

	base := baseName(sess.src)
	for i, f := range formats {
		prog := newProgress(c.Logger)
		path := outputPath(output, base, f, len(formats) > 1)
		if err := os.WriteFile(path, encoded[i], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		prog.done("Rendered " + path)
		printFile(path)
	}

	printSuccess("Render complete")
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.Stats.GroupCount, res.Stats.Total)
	return nil
}

// =============================================================================
// Style Flags
// =============================================================================

// styleFlags are the presentation flags shared by render, serve and explore.
// Only flags the user set override the config file.
type styleFlags struct {
	matchKey        string
	nodeShape       string
	labelBackground bool
	edgeOpacity     float64
	simple          bool
	width           float64
	height          float64
	title           string
}

func (sf *styleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sf.matchKey, "match-key", string(style.MatchUID), "edge style lookup: uid, pair")
	cmd.Flags().StringVar(&sf.nodeShape, "node-shape", string(style.ShapeRect), "node shape: rect, circle")
	cmd.Flags().BoolVar(&sf.labelBackground, "label-background", false, "draw a background behind edge labels")
	cmd.Flags().Float64Var(&sf.edgeOpacity, "edge-opacity", 0, "edge stroke opacity (default 0.5 for uid, 1 for pair)")
	cmd.Flags().BoolVar(&sf.simple, "simple", false, "treat the graph as a simple graph: one edge per node pair")
	cmd.Flags().Float64Var(&sf.width, "width", 0, "viewport width in pixels")
	cmd.Flags().Float64Var(&sf.height, "height", 0, "viewport height in pixels")
	cmd.Flags().StringVar(&sf.title, "title", "", "page title")
}

func (sf *styleFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	changed := cmd.Flags().Changed
	if changed("match-key") {
		opts.Style.MatchKey = style.MatchKey(sf.matchKey)
		if !changed("edge-opacity") {
			// Let the opacity default follow the new match key.
			opts.Style.EdgeOpacity = 0
		}
	}
	if changed("node-shape") {
		opts.Style.NodeShape = style.NodeShape(sf.nodeShape)
	}
	if changed("label-background") {
		opts.Style.LabelBackground = sf.labelBackground
	}
	if changed("edge-opacity") {
		opts.Style.EdgeOpacity = sf.edgeOpacity
	}
	if changed("simple") {
		opts.Build.Multigraph = !sf.simple
	}
	if changed("width") {
		opts.Viewport.Width = sf.width
	}
	if changed("height") {
		opts.Viewport.Height = sf.height
	}
	if changed("title") {
		opts.Title = sf.title
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
