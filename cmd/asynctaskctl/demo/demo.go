package demo

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"go.datum.net/asynctask/pkg/asynctask"
)

// NewCommand creates a demo command that runs a small fleet of tasks
// against a live Manager, serving its Prometheus collectors over HTTP for
// the duration of the run.
func NewCommand(log logr.Logger) *cobra.Command {
	var duration time.Duration
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a short-lived fleet of example tasks against a Manager",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), log, duration, metricsAddr)
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 10*time.Second, "how long to run the demo fleet before clearing it")
	cmd.Flags().StringVar(&metricsAddr, "metrics-address", ":9090", "address to serve /metrics on while the demo runs")

	return cmd
}

func run(ctx context.Context, log logr.Logger, duration time.Duration, metricsAddr string) error {
	m := asynctask.NewManager(asynctask.WithLogger(log))

	reg := prometheus.NewRegistry()
	reg.MustRegister(m.Collectors()...)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: metricsAddr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "metrics server exited")
		}
	}()
	defer server.Close()

	var ticks int
	_, err := m.SetInterval(func() {
		ticks++
		log.Info("tick", "count", ticks)
	}, time.Second, asynctask.Options{Label: "demo-ticker"})
	if err != nil {
		return fmt.Errorf("registering demo ticker: %w", err)
	}

	fut, err := m.Sleep(duration, asynctask.Options{Label: "demo-timer"})
	if err != nil {
		return fmt.Errorf("registering demo timer: %w", err)
	}

	_, err = fut.Await(ctx)
	if err != nil {
		log.Info("demo timer did not complete naturally", "reason", err)
	}

	return m.ClearAll(asynctask.ClearAllOptions{})
}
