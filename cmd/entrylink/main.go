// Package main provides the entry point for the entrylink CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version      = "0.1.0-dev"
	globalConfig string
	globalQuiet  bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "entrylink",
		Short:         "Materializes relations between exported JSON entries",
		Long:          "Builds helper indices from source tables and writes references and aggregated values into exported entry files.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalConfig, "config", "c", "",
		"Config file (default: .entrylink/config.yaml; relative paths resolve against the file's directory)")
	rootCmd.PersistentFlags().BoolVarP(&globalQuiet, "quiet", "q", false, "Suppress progress logging")

	rootCmd.AddCommand(
		newInitCmd(),
		newIndexCmd(),
		newLinkCmd(),
		newRunCmd(),
		newCheckCmd(),
		newModelsCmd(),
	)

	return rootCmd
}
