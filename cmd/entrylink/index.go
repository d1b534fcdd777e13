package main

import (
	"github.com/spf13/cobra"

	"github.com/ersonp/entrylink/internal/application/handlers"
)

type indexFlags struct {
	models []string
}

func newIndexCmd() *cobra.Command {
	var flags indexFlags

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build helper indices from source tables",
		Long:  "Scans the source table behind every indexed relation of the selected models and writes one helper index file per (primary_id, related model).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, flags)
		},
	}

	cmd.Flags().StringSliceVarP(&flags.models, "model", "m", nil, "Models to index (default: every model with relations)")

	return cmd
}

func runIndex(cmd *cobra.Command, flags indexFlags) error {
	ctx := cmd.Context()

	return withDeps(nil, func(d *Deps) error {
		result, err := d.ExportHandler.HandleIndex(ctx, handlers.ExportOptions{Models: flags.models})
		if err != nil {
			return err
		}
		printRunResult(cmd.OutOrStdout(), result)
		return nil
	})
}
