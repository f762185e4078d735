package nativehost

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/laurynn-wl/cookie-project/internal/nativehost"
)

// run serves the browser over stdin and stdout. stdout carries the framed
// protocol only, so every diagnostic goes to stderr or the log file.
func run(open Runtime) cli.ActionFunc {
	return func(c *cli.Context) error {
		if open == nil {
			return cli.NewExitError("native host runtime is not configured", 1)
		}
		a, l, closeFn, err := open(c)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start native host: %v\n", err)
			return cli.NewExitError("failed to start native host", 1)
		}
		defer closeFn()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		host := nativehost.NewHost(a, l)
		// blocks until the browser closes stdin
		if err := host.Run(ctx); err != nil {
			l.Error("native host stopped: %v", err)
			fmt.Fprintf(os.Stderr, "native host error: %v\n", err)
			return cli.NewExitError("native host error", 1)
		}
		return nil
	}
}
