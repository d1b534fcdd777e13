package main

import (
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the mapping against the structure file",
		Long:  "Resolves every declared relation and helper index without reading source tables or entries.",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(nil, func(d *Deps) error {
		result, err := d.ExportHandler.HandleCheck(ctx)
		if err != nil {
			return err
		}
		printCheckResult(cmd.OutOrStdout(), result)
		return nil
	})
}
