package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFingerprintCmd(a *app) *cobra.Command {
	var secretStdin bool

	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print a short check code for the master secret",
		Long: `fingerprint prints a short code computed from the master secret alone.
Remember the code once; if it ever differs, the secret was mistyped.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := a.readSecret(cmd, secretStdin)
			if err != nil {
				return err
			}

			engine, err := a.engine(nil)
			if err != nil {
				return err
			}
			defer engine.Close()

			code, err := engine.Fingerprint(cmd.Context(), secret)
			if err != nil {
				return failure("fingerprint", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}
	cmd.Flags().BoolVar(&secretStdin, "secret-stdin", false, "read the master secret from the first line of stdin")

	return cmd
}
