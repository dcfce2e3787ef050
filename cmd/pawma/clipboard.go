package main

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
)

type clipboardAccess interface {
	WriteAll(text string) error
	ReadAll() (string, error)
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }
func (systemClipboard) ReadAll() (string, error)  { return clipboard.ReadAll() }

// clearAfter waits for d or ctx, then empties the clipboard if it still holds
// text. Something the user copied in the meantime is left alone.
func clearAfter(ctx context.Context, clip clipboardAccess, text string, d time.Duration) (bool, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}

	current, err := clip.ReadAll()
	if err != nil {
		return false, err
	}
	if current != text {
		return false, nil
	}
	return true, clip.WriteAll("")
}
