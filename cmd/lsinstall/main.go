package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kompox/lsinstall/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	root.SetArgs(normalizeArgs(os.Args[1:]))
	root.SetContext(ctx)
	executed, err := root.ExecuteC()
	if err != nil {
		ctx := root.Context()
		if executed != nil && executed.Context() != nil {
			ctx = executed.Context()
		}
		logging.FromContext(ctx).Errorf(ctx, "Failed: %s", err)
		stop()
		os.Exit(1)
	}
}
