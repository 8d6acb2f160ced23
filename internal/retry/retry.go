// Package retry runs a condition a bounded number of times.
package retry

import (
	"context"
	"errors"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// ErrExhausted is returned when every attempt ran without the condition
// reporting done.
var ErrExhausted = errors.New("retry attempts exhausted")

// Options bounds a Poll.
type Options struct {
	// Attempts is the maximum number of times the condition runs. Values below 1 mean 1.
	Attempts int
	// Interval is the fixed wait between attempts.
	Interval time.Duration
	// Deadline, when non-zero, caps the total time spent polling.
	Deadline time.Duration
}

// Condition reports whether polling is done. A non-nil error stops polling
// and is returned from Poll as is.
type Condition func(ctx context.Context) (done bool, err error)

// Poll runs cond until it reports done, returns an error, the attempts run
// out (ErrExhausted), or ctx ends (ctx.Err()). The first attempt runs
// immediately.
func Poll(ctx context.Context, opts Options, cond Condition) error {
	attempts := opts.Attempts
	if attempts < 1 {
		attempts = 1
	}
	if opts.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Deadline)
		defer cancel()
	}
	backoff := wait.Backoff{
		Duration: opts.Interval,
		Factor:   1,
		Steps:    attempts,
	}
	err := wait.ExponentialBackoffWithContext(ctx, backoff, wait.ConditionWithContextFunc(cond))
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return ctxErr
	}
	if wait.Interrupted(err) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return ErrExhausted
	}
	return err
}
