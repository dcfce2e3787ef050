// Command pawma derives site passwords from a master secret.
//
//	pawma derive https://github.com/login
//	pawma derive --raw example.com -d alice --output json
//	pawma serve --addr 127.0.0.1:8417
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, args []string) int {
	root := newRootCmd(newApp())
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	code := exitCode(err)
	fmt.Fprintln(root.ErrOrStderr(), errorColor.Sprint("error: ")+err.Error())
	return code
}
