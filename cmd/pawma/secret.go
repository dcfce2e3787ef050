package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func termIsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}

func termReadPassword(fd int) ([]byte, error) {
	return term.ReadPassword(fd)
}

// readSecret reads the master secret from stdin when fromStdin is set, else
// prompts on the terminal without echo. It never falls back to a flag or the
// environment.
func (a *app) readSecret(cmd *cobra.Command, fromStdin bool) (string, error) {
	if fromStdin {
		return readSecretLine(cmd.InOrStdin())
	}

	fd := int(os.Stdin.Fd())
	if f, ok := cmd.InOrStdin().(*os.File); ok {
		fd = int(f.Fd())
	}
	if !a.isTerminal(fd) {
		return "", usageError("stdin is not a terminal; pass --secret-stdin to read the master secret from a pipe")
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Master secret: ")
	raw, err := a.readPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", failure("failed to read master secret", err)
	}
	defer clear(raw)

	return string(raw), nil
}

// readSecretLine reads up to the first newline. The line terminator is not
// part of the secret; other whitespace is.
func readSecretLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", failure("failed to read master secret", err)
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}
