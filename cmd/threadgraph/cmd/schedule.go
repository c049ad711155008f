package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ibeckermayer/threadgraph/internal/logger"
	"github.com/ibeckermayer/threadgraph/internal/scheduler"
)

func init() {
	scheduleCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	scheduleCmd.Flags().Bool("now", false, "Run the scrape job once immediately")
	rootCmd.AddCommand(scheduleCmd)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Runs the scrape job on the configured schedule until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		metricsAddr := cfg.Metrics.Addr
		if cmd.Flags().Changed("metrics-addr") {
			metricsAddr, _ = cmd.Flags().GetString("metrics-addr")
		}
		runNow, _ := cmd.Flags().GetBool("now")

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		a, err := newApp(reg)
		if err != nil {
			return err
		}

		sched, err := scheduler.New(cfg.Schedule.Timezone, logger.Component(log, "scheduler"))
		if err != nil {
			return err
		}

		job := func(ctx context.Context) error {
			_, err := a.Run(ctx)
			return err
		}

		if cfg.Schedule.IntervalHours > 0 {
			if err := sched.AddScrapeJob(cfg.Schedule.IntervalHours, job); err != nil {
				return err
			}
		}
		for _, at := range cfg.Schedule.DailyAt {
			if err := sched.AddDailyJob("scrape-"+at, at, job); err != nil {
				return err
			}
		}
		if len(sched.ListJobs()) == 0 {
			return fmt.Errorf("nothing to schedule: set schedule.interval_hours or schedule.daily_at")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var srv *http.Server
		if metricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			srv = &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
			go func() {
				log.Info().Str("addr", metricsAddr).Msg("serving metrics")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error().Err(err).Msg("metrics server failed")
				}
			}()
		}

		if runNow {
			// a failed first run is logged; the schedule keeps going
			_ = sched.RunNow(ctx, "scrape", job)
		}

		sched.Start()
		for _, j := range sched.ListJobs() {
			log.Info().Str("job", j.Name).Time("next_run", j.NextRun).Msg("scheduled")
		}

		<-ctx.Done()

		<-sched.Stop().Done()
		if srv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to stop metrics server: %w", err)
			}
		}
		return nil
	},
}
