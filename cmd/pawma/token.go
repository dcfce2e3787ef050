package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dev-manthan-sharma/paw-ma/jwt"
)

func newTokenCmd(a *app) *cobra.Command {
	var (
		subject string
		scopes  []string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the HTTP API",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.settings.TokenKey == "" {
				return usageError("token_key is not configured")
			}
			for _, s := range scopes {
				if s != jwt.ScopeDerive && s != jwt.ScopeDomain {
					return usageError("unknown scope %q (want %s or %s)", s, jwt.ScopeDerive, jwt.ScopeDomain)
				}
			}

			m, err := a.tokenManager()
			if err != nil {
				return err
			}
			tok, err := m.Issue(subject, scopes, ttl)
			if err != nil {
				return failure("issue token", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&subject, "subject", "cli", "token subject")
	fs.StringSliceVar(&scopes, "scope", nil, "granted scopes (default derive,domain)")
	fs.DurationVar(&ttl, "ttl", 0, "lifetime, capped at token_ttl")

	return cmd
}
