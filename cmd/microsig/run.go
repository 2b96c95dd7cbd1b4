package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/AnatoleLucet/microsig/internal/scenario"
	"github.com/AnatoleLucet/microsig/metrics"
	"github.com/AnatoleLucet/microsig/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var (
		withMetrics bool
		withTracing bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario and print every effect execution",
		Long: `Run loads a scenario file and replays its steps.

Every effect execution prints one line:

  <step> <effect> <node>=<value> ...

Step 0 is the initial run of each effect. A summary of the run counts
follows the last step.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scenario.LoadFile(args[0])
			if err != nil {
				return err
			}

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			opts := []scenario.Option{
				scenario.WithOutput(cmd.OutOrStdout()),
				scenario.WithLogger(logger),
			}

			var registry *prometheus.Registry
			if withMetrics {
				registry = prometheus.NewRegistry()
				opts = append(opts, scenario.WithObserver(metrics.New(metrics.WithRegistry(registry))))
			}
			if withTracing {
				// spans go to the global provider, a no-op unless one is installed
				opts = append(opts, scenario.WithObserver(tracing.New()))
			}

			result, err := scenario.Run(cmd.Context(), s, opts...)
			if err != nil {
				return err
			}

			for _, err := range result.Errors {
				logger.Error("effect failed", "err", err)
			}

			if registry != nil {
				return writeMetrics(cmd.OutOrStdout(), registry)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "Print Prometheus metrics after the run")
	cmd.Flags().BoolVar(&withTracing, "trace", false, "Record a span per flush with the global OpenTelemetry provider")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every flush")

	return cmd
}

func writeMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	fmt.Fprintln(w)
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	return nil
}
