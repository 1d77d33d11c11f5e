package main

import (
	"github.com/spf13/cobra"

	"github.com/toyz/configen/internal/cli"
	"github.com/toyz/configen/internal/utils"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		dryRun      bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate every module listed in the configuration",
		Long: `Generate the dataclass module of every entry under "modules" in the
configuration file and write it below output_dir.

Examples:
  configen generate
  configen generate --config-dir ./conf --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			diagnostics := opts.diagnostics(cmd)
			diagnostics.ConfigenHeader("Generating structured configs")

			cfg := opts.runnerConfig()
			cfg.DryRun = dryRun
			cfg.Concurrency = concurrency

			runner := cli.NewRunner(cfg, diagnostics)
			runner.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

			if err := runner.Run(cmd.Context()); err != nil {
				// Per-module failures were already reported as they happened
				if len(runner.GetSummary().Failed) == 0 {
					reporter := cli.NewDiagnosticReporter(opts.verbose)
					reporter.SetOutput(cmd.ErrOrStderr())
					reporter.ReportError(err)
				}
				return reportedError{err}
			}

			summary := runner.GetSummary()
			if diagnostics.Level() >= utils.DiagnosticVerbose && len(summary.GeneratedFiles) > 0 {
				diagnostics.Subsection("Generated Files")
				diagnostics.Indent()
				for _, file := range summary.GeneratedFiles {
					diagnostics.List("%s", file)
				}
				diagnostics.Unindent()
			}
			if !dryRun {
				diagnostics.GenerationComplete()
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print generated modules instead of writing files")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Maximum parallel module generations (0 = number of CPUs)")

	return cmd
}
