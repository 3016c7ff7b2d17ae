package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/indoorroute/internal/server"
	"github.com/matzehuels/indoorroute/pkg/observability"
	"github.com/matzehuels/indoorroute/pkg/session"
)

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		tracing bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve routes, journeys and the route cache over HTTP.

Prometheus metrics are exposed at /metrics. With --tracing, route and journey
computations are also reported as OpenTelemetry spans.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := observability.NewPrometheusHooks(reg)
			observability.SetCacheHooks(metrics)
			observability.SetHTTPHooks(metrics)
			if tracing {
				observability.SetRoutingHooks(observability.CombineRouting(metrics, observability.NewTracingHooks()))
			} else {
				observability.SetRoutingHooks(metrics)
			}
			defer observability.Reset()

			var store session.Store = session.NewMemoryStore()
			if dir := c.cfg.Server.SessionDir; dir != "" {
				fs, err := session.NewFileStore(dir)
				if err != nil {
					return err
				}
				store = fs
			}
			defer store.Close()

			e, release, err := c.newEngine(ctx, nil)
			if err != nil {
				return err
			}
			defer release()

			srv, err := server.New(server.Options{
				Engine:     e,
				Sessions:   store,
				SessionTTL: c.cfg.Server.SessionTTL,
				DefaultVia: c.cfg.Via(),
				Gatherer:   reg,
				Logger:     logger,
			})
			if err != nil {
				return err
			}
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&tracing, "tracing", false, "emit OpenTelemetry spans for routing")
	return cmd
}
