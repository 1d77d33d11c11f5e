package main

import (
	"github.com/spf13/cobra"

	"github.com/toyz/configen/internal/cli"
)

func newCleanCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Delete the generated files of the configured modules",
		Long: `Delete the output file of every configured module. Only files starting
with the configured header are removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			diagnostics := opts.diagnostics(cmd)
			diagnostics.StartProgress("Cleaning generated files")

			runner := cli.NewRunner(opts.runnerConfig(), diagnostics)
			removed, err := runner.Clean(cmd.Context())
			if err != nil {
				diagnostics.EndProgress(false, "")
				diagnostics.Error("Clean operation failed: %v", err)
				return reportedError{err}
			}

			diagnostics.EndProgress(true, "")
			for _, file := range removed {
				diagnostics.Verbose("Removed %s", file)
			}
			diagnostics.Success("Removed %d generated file(s)", len(removed))
			return nil
		},
	}
}
