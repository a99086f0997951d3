package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/udisondev/webauth/internal/appdir"
	"github.com/udisondev/webauth/pkg/identity"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the app directory with a default config and an account key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := appdir.Init(); err != nil {
			return fmt.Errorf("init app directory: %w", err)
		}

		kp, err := identity.LoadFromFile(appdir.KeyPath())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Initialized: %s\n", appdir.Dir())
		fmt.Fprintf(out, "Config: %s\n", appdir.ConfigPath())
		fmt.Fprintf(out, "Key: %s\n", appdir.KeyPath())
		fmt.Fprintf(out, "Logs: %s\n", appdir.LogsDir())
		fmt.Fprintf(out, "Account: %s\n", kp.Address())
		return nil
	},
}
