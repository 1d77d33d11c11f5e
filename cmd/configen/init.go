package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/toyz/configen/internal/config"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			diagnostics := opts.diagnostics(cmd)
			path := filepath.Join(opts.configDir, opts.configName+".yaml")

			if _, err := os.Stat(path); err == nil && !force {
				err := fmt.Errorf("%s already exists (use --force to overwrite)", path)
				diagnostics.Error("%v", err)
				return reportedError{err}
			}

			if err := config.Save(config.Default(), path); err != nil {
				diagnostics.Error("%v", err)
				return reportedError{err}
			}

			diagnostics.Success("Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")

	return cmd
}
