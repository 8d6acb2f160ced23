package main

import (
	"context"
	"flag"
	"io"
	"sync"
	"time"

	klog "k8s.io/klog/v2"

	"github.com/kompox/lsinstall/internal/logging"
)

var klogOnce sync.Once

// quietKlog discards client-go's klog output. It writes neither to the
// terminal nor to log files under $TMPDIR. --debug skips it.
func quietKlog() {
	klogOnce.Do(func() {
		fs := flag.NewFlagSet("klog", flag.ContinueOnError)
		klog.InitFlags(fs)
		_ = fs.Set("stderrthreshold", "FATAL")
		_ = fs.Set("v", "0")
		klog.SetOutput(io.Discard)
		klog.LogToStderr(false)
	})
}

// withCmdRunLogger emits the span lines of a command run.
//
//	ctx, cleanup := withCmdRunLogger(ctx, "up", namespace)
//	defer func() { cleanup(err) }()
//
// Start is CMD:<operation>/S, then CMD:<operation>/EOK or CMD:<operation>/EFAIL
// with the truncated error and elapsed seconds. All lines are INFO.
func withCmdRunLogger(ctx context.Context, operation, namespace string) (context.Context, func(err error)) {
	startAt := time.Now()

	logger := logging.FromContext(ctx).With("namespace", namespace)
	ctx = logging.WithLogger(ctx, logger)

	logger.Info(ctx, "CMD:"+operation+"/S")

	cleanup := func(err error) {
		elapsed := time.Since(startAt).Seconds()
		if err == nil {
			logger.Info(ctx, "CMD:"+operation+"/EOK", "err", "", "elapsed", elapsed)
			return
		}
		errStr := err.Error()
		if len(errStr) > 32 {
			errStr = errStr[:32] + "..."
		}
		logger.Info(ctx, "CMD:"+operation+"/EFAIL", "err", errStr, "elapsed", elapsed)
	}

	return ctx, cleanup
}
