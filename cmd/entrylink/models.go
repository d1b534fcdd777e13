package main

import (
	"github.com/spf13/cobra"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List mapped models and their relations",
		Args:  cobra.NoArgs,
		RunE:  runModels,
	}
}

func runModels(cmd *cobra.Command, args []string) error {
	return withDeps(nil, func(d *Deps) error {
		printModels(cmd.OutOrStdout(), d.ExportHandler.HandleModels())
		return nil
	})
}
