package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	pawma "github.com/dev-manthan-sharma/paw-ma"
)

var noticeColor = color.New(color.FgYellow)

type deriveFlags struct {
	raw             bool
	differentiator  string
	copy            bool
	clearAfter      time.Duration
	output          string
	showFingerprint bool
	secretStdin     bool
}

// deriveOutput is what derive prints in json and yaml mode.
type deriveOutput struct {
	pawma.Success `yaml:",inline"`
	Fingerprint   string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
}

func newDeriveCmd(a *app) *cobra.Command {
	var f deriveFlags

	cmd := &cobra.Command{
		Use:   "derive <url>",
		Short: "Derive the password for a site",
		Example: `  pawma derive https://accounts.example.com/login
  pawma derive --raw example.com -d alice
  printf '%s\n' "$SECRET" | pawma derive --secret-stdin github.com --output json`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDerive(cmd, args[0], f)
		},
	}

	fs := cmd.Flags()
	fs.BoolVar(&f.raw, "raw", false, "use the argument verbatim as the identifier instead of parsing a URL")
	fs.StringVarP(&f.differentiator, "differentiator", "d", "", "account name or counter for a second password on the same site")
	fs.BoolVar(&f.copy, "copy", false, "copy the password to the clipboard instead of printing it")
	fs.DurationVar(&f.clearAfter, "clear-after", 0, "clear the clipboard after this long (default from config)")
	fs.StringVarP(&f.output, "output", "o", "", "output format: text, json or yaml")
	fs.BoolVar(&f.showFingerprint, "show-fingerprint", false, "also print the master-secret check code")
	fs.BoolVar(&f.secretStdin, "secret-stdin", false, "read the master secret from the first line of stdin")

	return cmd
}

func (a *app) runDerive(cmd *cobra.Command, target string, f deriveFlags) error {
	format, err := a.outputFormat(cmd, f.output)
	if err != nil {
		return err
	}
	clearAfterDur := a.settings.ClearAfter
	if flagChanged(cmd.Flags(), "clear-after") {
		clearAfterDur = f.clearAfter
	}
	if clearAfterDur < 0 {
		return usageError("--clear-after must be >= 0")
	}

	secret, err := a.readSecret(cmd, f.secretStdin)
	if err != nil {
		return err
	}

	engine, err := a.engine(nil)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := cmd.Context()
	var res *pawma.Success
	if f.raw {
		res, err = engine.Derive(ctx, target, secret, f.differentiator)
	} else {
		res, err = engine.DeriveURL(ctx, target, secret, f.differentiator)
	}
	if err != nil {
		return failure("derive", err)
	}

	out := deriveOutput{Success: *res}
	if f.showFingerprint {
		code, err := engine.Fingerprint(ctx, secret)
		if err != nil {
			return failure("fingerprint", err)
		}
		out.Fingerprint = code
	}

	if f.copy {
		if err := a.copyPassword(cmd, res.Password, clearAfterDur); err != nil {
			return err
		}
		out.Password = ""
		if format == outputText {
			if out.Fingerprint != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "fingerprint: %s\n", out.Fingerprint)
			}
			return nil
		}
		return render(cmd.OutOrStdout(), format, out)
	}

	if format == outputText {
		fmt.Fprintln(cmd.OutOrStdout(), out.Password)
		if out.Fingerprint != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "fingerprint: %s\n", out.Fingerprint)
		}
		return nil
	}
	return render(cmd.OutOrStdout(), format, out)
}

// copyPassword places pw on the clipboard and, when d > 0, blocks until the
// clipboard has been cleared or the command is interrupted.
func (a *app) copyPassword(cmd *cobra.Command, pw string, d time.Duration) error {
	if err := a.clip.WriteAll(pw); err != nil {
		return failure("clipboard unavailable", err)
	}
	if d == 0 {
		noticeColor.Fprintln(cmd.ErrOrStderr(), "Password copied to clipboard.")
		return nil
	}

	noticeColor.Fprintf(cmd.ErrOrStderr(), "Password copied to clipboard. Clearing in %s.\n", d)
	cleared, err := clearAfter(cmd.Context(), a.clip, pw, d)
	if err != nil {
		return failure("clipboard unavailable", err)
	}
	if cleared {
		noticeColor.Fprintln(cmd.ErrOrStderr(), "Clipboard cleared.")
	} else {
		a.logger.Debug("clipboard changed; not clearing")
	}
	return nil
}

func (a *app) outputFormat(cmd *cobra.Command, flag string) (outputFormat, error) {
	if flagChanged(cmd.Flags(), "output") {
		return parseOutput(flag)
	}
	return parseOutput(a.settings.Output)
}
