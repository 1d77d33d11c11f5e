package main

import (
	"github.com/spf13/cobra"

	"github.com/toyz/configen/internal/cli"
	"github.com/toyz/configen/internal/config"
	"github.com/toyz/configen/internal/utils"
)

// reportedError marks an error that was already shown to the user
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

// rootOptions holds the flags shared by every subcommand
type rootOptions struct {
	configDir  string
	configName string
	verbose    bool
	quiet      bool
}

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "configen",
		Short: "Generate OmegaConf structured-config dataclasses",
		Long: `configen mirrors classes declared in schema documents or Go packages as
Python @dataclass definitions usable as OmegaConf / Hydra structured configs.

Modules to generate are listed in configen.yaml; run "configen init" to
create a starter file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", ".", "Directory containing the configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.configName, "config-name", config.DefaultConfigName, "Configuration file name without extension")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output and detailed error reporting")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Only show errors and final results")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	// Add subcommands to root
	rootCmd.AddCommand(newGenerateCmd(opts))
	rootCmd.AddCommand(newCleanCmd(opts))
	rootCmd.AddCommand(newInitCmd(opts))
	rootCmd.AddCommand(newVersionCmd(opts))

	return rootCmd
}

// diagnostics creates the diagnostic system selected by --quiet / --verbose,
// writing to the command's streams
func (o *rootOptions) diagnostics(cmd *cobra.Command) *utils.DiagnosticSystem {
	var d *utils.DiagnosticSystem
	switch {
	case o.quiet:
		d = utils.NewQuietDiagnostics()
	case o.verbose:
		d = utils.NewVerboseDiagnostics()
	default:
		d = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	d.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	return d
}

func (o *rootOptions) runnerConfig() cli.Config {
	return cli.Config{
		ConfigDir:  o.configDir,
		ConfigName: o.configName,
		Verbose:    o.verbose,
	}
}
