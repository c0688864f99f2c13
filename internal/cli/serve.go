package cli

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/config"
	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render API over HTTP",
		Long: `Serve the render API over HTTP.

  POST /api/v1/render?format=svg   graph JSON in, artifact out
  POST /api/v1/layout              graph JSON in, layout JSON out
  GET  /api/v1/palette             type → color assignments
  GET  /health                     liveness and build info
  GET  /metrics                    Prometheus metrics (server.metrics)

With --config, edits to the file are applied without a restart: layout
constants, canvas defaults and the log level.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.config().Server.Addr = addr
			}
			return c.runServe(cmd.Context(), watch)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload the config file when it changes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, watch bool) error {
	cfg := c.config()
	logger := loggerFromContext(ctx)

	b, err := c.newBackend(ctx, cacheMemory)
	if err != nil {
		return err
	}
	defer b.Close()

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithDefaults(defaultOptions(cfg)),
		server.WithRenderTimeout(cfg.Server.RenderTimeout.Std()),
		server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		server.WithTimeouts(cfg.Server.ReadTimeout.Std(), cfg.Server.WriteTimeout.Std()),
	}
	if cfg.Server.Metrics {
		opts = append(opts, server.WithMetricsHandler(metricsHandler()))
		defer observability.Reset()
	}
	srv := server.New(b.runner, opts...)

	if watch && c.configPath != "" {
		w, err := config.NewWatcher(c.configPath, cfg, logger)
		if err != nil {
			return err
		}
		w.OnChange(func(next *config.Config) {
			b.runner.SetParams(next.Layout)
			srv.SetDefaults(defaultOptions(next))
			if level, err := log.ParseLevel(next.LogLevel); err == nil {
				c.Logger.SetLevel(level)
			}
			logger.Info("Applied config", "path", c.configPath)
		})
		go w.Run(ctx)
	}

	printInfo("Serving on %s", StyleHighlight.Render(cfg.Server.Addr))
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

// metricsHandler registers Prometheus hooks on a fresh registry and returns
// its scrape handler.
func metricsHandler() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetPipelineHooks(hooks)
	observability.SetPaletteHooks(hooks)
	observability.SetHTTPHooks(hooks)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
