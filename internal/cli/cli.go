// Package cli implements the topovis command-line interface.
//
// The commands share one pipeline: a source is fetched, validated, laid out
// with Graphviz, styled, and written in one or more formats.
//
// # Commands
//
//   - render: write SVG, HTML, JSON, PNG or PDF; --watch re-renders on change
//   - layout: write the positioned graph or the generated DOT
//   - serve: serve the interactive page and the graph data over HTTP
//   - explore: pan and zoom the graph in the terminal
//   - cache: inspect or clear the layout cache
//
// A source argument is a URL (http, redis, mongodb) or a file path; without
// one, the [source] section of the config file is used.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// carried through context.Context.
package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topovis/pkg/buildinfo"
	"github.com/matzehuels/topovis/pkg/cache"
	"github.com/matzehuels/topovis/pkg/config"
	"github.com/matzehuels/topovis/pkg/layout"
	"github.com/matzehuels/topovis/pkg/pipeline"
	"github.com/matzehuels/topovis/pkg/render"
	"github.com/matzehuels/topovis/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display and default file names.
const appName = "topovis"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Engine computes layouts. Nil uses Graphviz.
	Engine layout.Engine

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "topovis draws grouped graph topologies",
		Long:         `topovis fetches a graph description, lays it out left to right with Graphviz, and draws it with labeled clusters, colored edges and a pan and zoom viewport.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (TOML)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}

// config loads the config file once; without --config it returns the
// defaults.
func (c *CLI) config() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	c.cfg = &cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// runnerOpts selects the optional layers of a runner.
type runnerOpts struct {
	noCache bool
}

// session is a runner with the resources to release when a command ends.
type session struct {
	runner *pipeline.Runner
	opts   pipeline.Options
	cfg    config.Config
	src    source.Config
	cache  cache.Cache
	closer func(context.Context) error
}

// Close releases the cache and any source connection.
func (s *session) Close(ctx context.Context) error {
	var first error
	if s.closer != nil {
		first = s.closer(ctx)
	}
	if err := s.cache.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// newSession builds a runner for arg, or for the configured source when arg
// is empty.
func (c *CLI) newSession(ctx context.Context, arg string, ro runnerOpts) (*session, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}

	srcCfg := cfg.Source
	if arg != "" {
		if srcCfg, err = source.ParseConfig(arg); err != nil {
			return nil, err
		}
		srcCfg.Timeout = cfg.Source.Timeout
	}
	srcCfg.SetDefaults()
	src, err := source.New(srcCfg)
	if err != nil {
		return nil, err
	}

	cacheCfg := cfg.Cache
	if ro.noCache {
		cacheCfg.Type = config.CacheNone
	}
	ch, err := cacheCfg.Open(ctx)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, src: srcCfg, cache: ch, closer: sourceCloser(src)}

	engine := c.Engine
	if engine == nil {
		engine = layout.GraphvizEngine{}
	}
	engine = layout.NewCachedEngine(engine, ch, cacheCfg.Keyer(), c.Logger)

	s.runner = pipeline.NewRunner(src, engine, c.Logger)
	s.opts = cfg.Pipeline()
	s.opts.Logger = c.Logger
	c.Logger.Debug("session ready", "source", src.String(), "cache", cacheCfg.Type)
	return s, nil
}

func sourceCloser(src source.Source) func(context.Context) error {
	switch s := src.(type) {
	case *source.Redis:
		return func(context.Context) error { return s.Close() }
	case *source.Mongo:
		return s.Close
	}
	return nil
}

// =============================================================================
// Output Helpers
// =============================================================================

// parseFormats parses a comma-separated format list; empty means svg.
func parseFormats(s string) ([]render.Format, error) {
	if strings.TrimSpace(s) == "" {
		return []render.Format{render.FormatSVG}, nil
	}
	var formats []render.Format
	seen := make(map[render.Format]bool)
	for _, part := range strings.Split(s, ",") {
		f, err := render.ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	return formats, nil
}

// baseName derives an output base path from the source: the file path
// without its extension, or the app name for remote sources.
func baseName(src source.Config) string {
	if src.Type == source.TypeFile && src.Path != "" {
		return strings.TrimSuffix(src.Path, filepath.Ext(src.Path))
	}
	return appName
}

// outputPath returns where format f is written. An explicit output is used
// as is for a single format; with several formats its known extension is
// replaced per format.
func outputPath(output, base string, f render.Format, multiple bool) string {
	if output == "" {
		return base + "." + string(f)
	}
	if !multiple {
		return output
	}
	ext := filepath.Ext(output)
	if _, err := render.ParseFormat(strings.TrimPrefix(ext, ".")); err == nil {
		output = strings.TrimSuffix(output, ext)
	}
	return fmt.Sprintf("%s.%s", output, f)
}
