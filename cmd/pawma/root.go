package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type rootFlags struct {
	configFile string
	logLevel   string
	logFormat  string
	noColor    bool
}

func newRootCmd(a *app) *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:   "pawma",
		Short: "Deterministic password derivation",
		Long: `pawma derives a strong password for every site from one master secret.

Nothing is stored: the same URL, master secret and optional differentiator
always give the same 16-character password, on any machine.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/pawma/config.yaml)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", "", "log format: text or json")
	pf.BoolVar(&flags.noColor, "no-color", false, "disable coloured output")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%v", err)
	})

	root.AddCommand(
		newDeriveCmd(a),
		newDomainCmd(a),
		newFingerprintCmd(a),
		newServeCmd(a),
		newTokenCmd(a),
		newVersionCmd(),
	)

	return root
}

func (a *app) load(cmd *cobra.Command, flags rootFlags) error {
	if flags.noColor {
		color.NoColor = true
	}

	path, explicit := flags.configFile, flags.configFile != ""
	if !explicit {
		path = defaultConfigPath()
	}
	s, err := loadSettings(path, explicit)
	if err != nil {
		return &cliError{Code: ExitUsage, Message: "config", Cause: err}
	}

	if flags.logLevel != "" {
		s.LogLevel = flags.logLevel
	}
	if flags.logFormat != "" {
		s.LogFormat = flags.logFormat
	}
	logger, err := newLogger(cmd.ErrOrStderr(), s.LogLevel, s.LogFormat)
	if err != nil {
		return err
	}

	a.settings = s
	a.logger = logger
	return nil
}

// exactArgs is cobra.ExactArgs with a usage exit code.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError("%v", err)
		}
		return nil
	}
}

func flagChanged(fs *pflag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	return f != nil && f.Changed
}
