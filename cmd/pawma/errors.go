package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
)

// Exit codes.
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

var errorColor = color.New(color.FgRed, color.Bold)

// cliError carries an exit code.
type cliError struct {
	Code    int
	Message string
	Cause   error
}

func (e *cliError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *cliError) Unwrap() error {
	return e.Cause
}

func usageError(format string, args ...any) error {
	return &cliError{Code: ExitUsage, Message: fmt.Sprintf(format, args...)}
}

func failure(message string, err error) error {
	return &cliError{Code: ExitFailure, Message: message, Cause: err}
}

func exitCode(err error) int {
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ExitFailure
}
