package main

import (
	"github.com/spf13/cobra"

	"github.com/ersonp/entrylink/internal/application/handlers"
)

func newRunCmd() *cobra.Command {
	var flags linkFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Validate, index and link in one pass",
		Long:  "Validates every selected model against the structure file, builds all helper indices, then links every model in mapping order.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, flags)
		},
	}

	addLinkFlags(cmd, &flags)

	return cmd
}

func runRun(cmd *cobra.Command, flags linkFlags) error {
	if err := flags.validate(); err != nil {
		return err
	}

	ctx := cmd.Context()

	return withDeps(flags.apply, func(d *Deps) error {
		result, err := d.ExportHandler.HandleRun(ctx, handlers.ExportOptions{Models: flags.models})
		if err != nil {
			return err
		}
		printRunResult(cmd.OutOrStdout(), result)
		return nil
	})
}
