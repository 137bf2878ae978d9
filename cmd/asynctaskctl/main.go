package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"k8s.io/component-base/cli"
	"k8s.io/klog/v2"

	demo "go.datum.net/asynctask/cmd/asynctaskctl/demo"
	version "go.datum.net/asynctask/cmd/asynctaskctl/version"
	"go.datum.net/asynctask/internal/tracing"
)

func main() {
	log := klog.Background()

	var enableTracing bool

	rootCmd := &cobra.Command{
		Use:   "asynctaskctl",
		Short: "asynctaskctl exercises the asynctask coordinator from the command line.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !enableTracing {
				return nil
			}
			if err := tracing.Configure(cmd.Context(), resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceNameKey.String("asynctaskctl"),
			)); err != nil {
				return fmt.Errorf("failed to initialize tracing: %w", err)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVar(&enableTracing, "otlp-tracing", false, "export Manager register/clear spans to an OTLP/gRPC collector")

	rootCmd.AddCommand(demo.NewCommand(log))
	rootCmd.AddCommand(version.NewCommand())

	code := cli.Run(rootCmd)
	os.Exit(code)
}
