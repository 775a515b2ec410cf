package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/resagg/helpers"
	"github.com/spektr-org/resagg/internal/config"
	"github.com/spektr-org/resagg/internal/metrics"
	"github.com/spektr-org/resagg/internal/watch"
)

func newWatchCmd(g *globalFlags) *cobra.Command {
	f := &jobFlags{}
	var (
		debounce    time.Duration
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-aggregate whenever a run table changes",
		Long: `Watch runs the job once, then again every time one of its run tables is
rewritten (for example while a simulation is still producing output). Failed
aggregations are logged and watching continues. With --metrics-addr, Prometheus
metrics are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := f.overrides(cmd)
			if err != nil {
				return err
			}
			g.overrides(cmd, set)
			if cmd.Flags().Changed("debounce") {
				set["watch.debounce"] = debounce
			}
			if cmd.Flags().Changed("metrics-addr") {
				set["watch.metrics_addr"] = metricsAddr
			}
			cfg, err := config.Load(g.configPath, set)
			if err != nil {
				return err
			}

			log := g.logger(cfg)
			defer log.Sync()
			ctx := cmd.Context()
			rec := metrics.New()

			if addr := cfg.Watch.MetricsAddr; addr != "" {
				stop := serveMetrics(addr, rec, log)
				defer stop()
			}

			aggregate := func(ctx context.Context) {
				if _, err := runJob(ctx, cfg, log, rec, cmd.OutOrStdout()); err != nil {
					log.Error("aggregation failed", zap.Error(err))
				}
			}
			aggregate(ctx)

			var paths []string
			for _, rc := range cfg.Job.Runs {
				paths = append(paths, helpers.TablePath(rc.Run()))
			}
			w, err := watch.New(paths, cfg.Watch.Debounce, func(ctx context.Context, changed []string) {
				log.Info("run tables changed", zap.Strings("paths", changed))
				aggregate(ctx)
			}, log)
			if err != nil {
				return err
			}
			return w.Run(ctx)
		},
	}
	f.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Quiet period before re-aggregating")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	return cmd
}

// serveMetrics starts a metrics server and returns a function that stops it.
func serveMetrics(addr string, rec *metrics.Recorder, log *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
