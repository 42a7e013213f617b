package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topovis/pkg/graph"
	"github.com/matzehuels/topovis/pkg/layout"
	"github.com/matzehuels/topovis/pkg/source"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		dot     bool
		noCache bool
		simple  bool
	)

	cmd := &cobra.Command{
		Use:   "layout [source]",
		Short: "Compute the positioned graph",
		Long: `Compute node, cluster and edge positions for a graph description.

The output is the positioned graph as JSON (same as 'render -f json'). With
--dot, the Graphviz input is written instead, which is useful to inspect the
layout with other Graphviz tools.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), firstArg(args), output, dot, noCache, simple)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <source>.layout.json, or stdout for remote sources)")
	cmd.Flags().BoolVar(&dot, "dot", false, "write the generated DOT instead of running the layout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&simple, "simple", false, "treat the graph as a simple graph: one edge per node pair")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, stdout io.Writer, arg, output string, dot, noCache, simple bool) error {
	sess, err := c.newSession(ctx, arg, runnerOpts{noCache: noCache})
	if err != nil {
		return err
	}
	defer sess.Close(context.WithoutCancel(ctx))

	opts := sess.opts
	if simple {
		opts.Build.Multigraph = false
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	start := time.Now()
	var data []byte
	var nodes, edges, groups int
	if dot {
		doc, err := sess.runner.Source.Fetch(ctx)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", sess.runner.Source, err)
		}
		g, err := graph.Build(doc, opts.Build)
		if err != nil {
			return err
		}
		data = []byte(layout.ToDOT(g, opts.Layout))
		nodes, edges, groups = g.NodeCount(), g.EdgeCount(), g.GroupCount()
	} else {
		res, err := sess.runner.Run(ctx, opts)
		if err != nil {
			return err
		}
		if data, err = res.Layout.Marshal(); err != nil {
			return err
		}
		nodes, edges, groups = res.Stats.NodeCount, res.Stats.EdgeCount, res.Stats.GroupCount
	}

	path := output
	if path == "" && sess.src.Type == source.TypeFile {
		ext := ".layout.json"
		if dot {
			ext = ".dot"
		}
		path = baseName(sess.src) + ext
	}
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}

	printSuccess("Layout complete")
	printFile(path)
	printStats(nodes, edges, groups, time.Since(start))
	if !dot {
		printNewline()
		printNextStep("Render", appName+" render "+sourceArg(arg, sess))
	}
	return nil
}

// sourceArg is how the user named the source, for suggested commands.
func sourceArg(arg string, sess *session) string {
	if arg != "" {
		return arg
	}
	return sess.runner.Source.String()
}
