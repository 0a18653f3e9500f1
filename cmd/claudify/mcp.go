package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/claudify"
	"github.com/wagiedev/claudify/internal/mcpserver"
	"github.com/wagiedev/claudify/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

func newMCPCmd(a *app) *cobra.Command {
	var (
		providerID  string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve a provider as a Model Context Protocol server over stdio",
		Long: `Starts an MCP server on stdin/stdout exposing two tools:

  execute  run a prompt through the provider
  status   report provider health and request counters

Logs go to stderr so they never corrupt the JSON-RPC stream.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var metricsSrv *http.Server

			if metricsAddr != "" {
				var err error

				// The observer must be in place before providers are created.
				if metricsSrv, err = a.metricsServer(metricsAddr); err != nil {
					return err
				}
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			mgr, err := a.openManager(ctx)
			if err != nil {
				return err
			}
			defer a.closeManager(ctx, mgr)

			p, err := pickProvider(ctx, mgr, providerID)
			if err != nil {
				return err
			}

			srv, err := mcpserver.New(p, a.log, mcpserver.WithVersion(version))
			if err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				defer cancel()

				if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
					return err
				}

				return nil
			})

			if metricsSrv != nil {
				g.Go(func() error {
					a.log.Info("serving metrics", "addr", metricsAddr)

					if err := metricsSrv.ListenAndServe(); !stderrors.Is(err, http.ErrServerClosed) {
						return err
					}

					return nil
				})

				g.Go(func() error {
					<-ctx.Done()

					shutdownCtx, cancelShutdown := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
					defer cancelShutdown()

					return metricsSrv.Shutdown(shutdownCtx)
				})
			}

			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&providerID, "provider", "", "provider id to serve (default: first healthy)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")

	return cmd
}

// metricsServer registers the request collectors and returns an HTTP server
// exposing them on /metrics. Providers created afterwards report to it.
func (a *app) metricsServer(addr string) (*http.Server, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	prom, err := metrics.NewPrometheus(reg)
	if err != nil {
		return nil, err
	}

	a.observer = prom

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}, nil
}

func pickProvider(ctx context.Context, mgr *claudify.Manager, id string) (claudify.Provider, error) {
	if id == "" {
		return mgr.Best(ctx)
	}

	p, ok := mgr.Provider(id)
	if !ok {
		return nil, &claudify.ConfigurationError{ProviderID: id, Message: "provider not configured"}
	}

	return p, nil
}
