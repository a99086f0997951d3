package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/udisondev/webauth/pkg/identity"
)

var (
	keygenOut   string
	keygenForce bool
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an account key; prints the address, and the seed unless --out is set",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		kp, err := identity.Generate()
		if err != nil {
			return err
		}

		if keygenOut != "" {
			if _, err := os.Stat(keygenOut); err == nil && !keygenForce {
				return fmt.Errorf("%s already exists, use --force to overwrite", keygenOut)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := kp.SaveToFile(keygenOut); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, kp.Address())
		if keygenOut == "" {
			fmt.Fprintln(out, kp.Seed())
		}
		return nil
	},
}

func init() {
	keygenCmd.Flags().StringVarP(&keygenOut, "out", "o", "", "write the seed to this file (0600)")
	keygenCmd.Flags().BoolVar(&keygenForce, "force", false, "overwrite an existing key file")
}
