package main

import (
	"log/slog"

	pawma "github.com/dev-manthan-sharma/paw-ma"
)

// app holds what the subcommands share once the root command has loaded the
// settings.
type app struct {
	settings Settings
	logger   *slog.Logger
	clip     clipboardAccess
	// isTerminal reports whether fd is an interactive terminal.
	isTerminal func(fd int) bool
	// readPassword reads a line from fd without echo.
	readPassword func(fd int) ([]byte, error)
}

func newApp() *app {
	return &app{
		logger:       slog.New(slog.DiscardHandler),
		clip:         systemClipboard{},
		isTerminal:   termIsTerminal,
		readPassword: termReadPassword,
	}
}

func (a *app) engine(audit pawma.AuditSink) (*pawma.Engine, error) {
	cfg := pawma.DefaultConfig()
	b := pawma.New().WithConfig(cfg).WithLogger(a.logger)
	if audit != nil {
		b = b.WithAuditEnabled(true).WithAuditSink(audit)
	}

	engine, err := b.Build()
	if err != nil {
		return nil, failure("engine init", err)
	}
	return engine, nil
}
