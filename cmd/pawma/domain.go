package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dev-manthan-sharma/paw-ma/domain"
)

type domainOutput struct {
	URL    string `json:"url" yaml:"url"`
	Domain string `json:"domain" yaml:"domain"`
}

func newDomainCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "domain <url>",
		Short: "Print the identifier a URL derives to",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat(cmd, output)
			if err != nil {
				return err
			}

			host, err := domain.Extract(args[0])
			if err != nil {
				return failure("domain", err)
			}

			if format == outputText {
				fmt.Fprintln(cmd.OutOrStdout(), host)
				return nil
			}
			return render(cmd.OutOrStdout(), format, domainOutput{URL: args[0], Domain: host})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: text, json or yaml")

	return cmd
}
