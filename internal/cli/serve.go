package cli

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topovis/pkg/observability"
	"github.com/matzehuels/topovis/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		host    string
		port    int
		open    bool
		noCache bool
	)
	var sf styleFlags

	cmd := &cobra.Command{
		Use:   "serve [source]",
		Short: "Serve the interactive graph page",
		Long: `Serve the interactive graph page and the graph data over HTTP.

Every page load fetches the source again and rebuilds the drawing. The
description itself is served verbatim on /graph_data, Prometheus metrics on
/metrics.

When the port is taken, the next free port is used unless --port was given
explicitly.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, firstArg(args), host, port, open, noCache, sf)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (default from config: localhost)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config: 8000)")
	cmd.Flags().BoolVar(&open, "open", false, "print the page URL for opening in a browser")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")
	sf.register(cmd)

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, arg, host string, port int, open, noCache bool, sf styleFlags) error {
	ctx := cmd.Context()
	sess, err := c.newSession(ctx, arg, runnerOpts{noCache: noCache})
	if err != nil {
		return err
	}
	defer sess.Close(context.WithoutCancel(ctx))

	opts := sess.opts
	sf.apply(cmd, &opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	srvCfg := sess.cfg.Server
	if host != "" {
		srvCfg.Host = host
	}
	if cmd.Flags().Changed("port") {
		srvCfg.Port = port
	} else {
		srvCfg.FindPort = true
	}
	if srvCfg.FindPort {
		free, err := server.FindAvailablePort(srvCfg.Host, srvCfg.Port, server.DefaultPortAttempts)
		if err != nil {
			return err
		}
		srvCfg.Port = free
	}

	metrics := observability.NewMetrics(nil)
	observability.SetPipelineHooks(metrics)
	observability.SetCacheHooks(metrics)
	observability.SetHTTPHooks(metrics)
	defer observability.Reset()

	srv := server.New(sess.runner, server.Options{
		Pipeline: opts,
		Metrics:  metrics,
		Logger:   c.Logger,
	})

	addr := net.JoinHostPort(srvCfg.Host, strconv.Itoa(srvCfg.Port))
	url := fmt.Sprintf("http://%s/", addr)
	printSuccess("Serving %s", sess.runner.Source.String())
	printKeyValue("Page", StyleLink.Render(url))
	printKeyValue("Data", url+"graph_data")
	printKeyValue("Metrics", url+"metrics")
	if open {
		printNewline()
		printNextStep("Open in a browser", url)
	}

	return srv.ListenAndServe(ctx, addr)
}
