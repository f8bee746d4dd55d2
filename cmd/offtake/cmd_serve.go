package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alejandrodnm/offtake/internal/adapters/httpapi"
	"github.com/alejandrodnm/offtake/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulator and finance tools over HTTP",
		Long: `Start the HTTP API on api.addr. Sweeps posted to /api/v1/sweep are
archived when storage.dsn is set. Prometheus metrics are exposed on
/metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.API.Addr = addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.New(reg)

			a, err := newApp(cfg, nil, appOptions{compact: true, notify: true, metrics: m})
			if err != nil {
				return err
			}
			defer a.Close()

			api := httpapi.NewServer(a.svc, m, reg, httpOptions(cfg))
			srv := &http.Server{
				Addr:              cfg.API.Addr,
				Handler:           api.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			slog.Info("offtake serving",
				"addr", cfg.API.Addr,
				"archive", a.svc.HasArchive(),
				"dataset", a.svc.HasDataset(),
				"rate_per_sec", cfg.API.RatePerSec,
			)
			return serve(cmd.Context(), srv)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default api.addr)")
	return cmd
}

// serve corre srv hasta que ctx se cancela y luego lo cierra ordenadamente.
func serve(ctx context.Context, srv *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("offtake stopped cleanly")
	return nil
}
