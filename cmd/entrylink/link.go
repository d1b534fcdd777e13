package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ersonp/entrylink/internal/application/handlers"
	"github.com/ersonp/entrylink/internal/infrastructure/config"
)

type linkFlags struct {
	models    []string
	workers   int
	manyMode  string
	onMissing string
}

func newLinkCmd() *cobra.Command {
	var flags linkFlags

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Write relations into entry files",
		Long:  "Applies every declared relation of the selected models to their entry files. Helper indices must already exist (see index).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLink(cmd, flags)
		},
	}

	addLinkFlags(cmd, &flags)

	return cmd
}

func addLinkFlags(cmd *cobra.Command, flags *linkFlags) {
	cmd.Flags().StringSliceVarP(&flags.models, "model", "m", nil, "Models to process (default: every model with relations)")
	cmd.Flags().IntVarP(&flags.workers, "workers", "j", 0, "Entries processed in parallel (default: link.workers)")
	cmd.Flags().StringVar(&flags.manyMode, "many-mode", "", "Existing arrays on many relations: append or replace (default: link.many_mode)")
	cmd.Flags().StringVar(&flags.onMissing, "on-missing", "", "Missing related entries: skip or fail (default: link.on_missing_related)")
}

// validate rejects unknown override values before any config is loaded.
func (f linkFlags) validate() error {
	if f.manyMode != "" && !slices.Contains(validManyModes, f.manyMode) {
		return fmt.Errorf("invalid many mode %q, valid modes: %v", f.manyMode, validManyModes)
	}
	if f.onMissing != "" && !slices.Contains(validMissingPolicies, f.onMissing) {
		return fmt.Errorf("invalid missing policy %q, valid policies: %v", f.onMissing, validMissingPolicies)
	}
	if f.workers < 0 {
		return fmt.Errorf("invalid workers %d, must be at least 1", f.workers)
	}
	return nil
}

// apply overrides config settings with the flags that were set.
func (f linkFlags) apply(cfg *config.Config) {
	if f.workers > 0 {
		cfg.Link.Workers = f.workers
	}
	if f.manyMode != "" {
		cfg.Link.ManyMode = f.manyMode
	}
	if f.onMissing != "" {
		cfg.Link.OnMissingRelated = f.onMissing
	}
}

func runLink(cmd *cobra.Command, flags linkFlags) error {
	if err := flags.validate(); err != nil {
		return err
	}

	ctx := cmd.Context()

	return withDeps(flags.apply, func(d *Deps) error {
		result, err := d.ExportHandler.HandleLink(ctx, handlers.ExportOptions{Models: flags.models})
		if err != nil {
			return err
		}
		printRunResult(cmd.OutOrStdout(), result)
		return nil
	})
}
