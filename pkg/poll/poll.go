// Package poll implements a bounded fixed-interval retry loop.
package poll

import (
	"context"
	"errors"
	"time"
)

// ErrTimedOut is returned when every attempt was exhausted without the
// probe producing a value.
var ErrTimedOut = errors.New("poll: timed out")

// Until invokes fn up to attempts times, sleeping interval between
// attempts. fn reports done=true when it has a result; an error from fn
// aborts the loop immediately. The interval is fixed, not exponential.
func Until[T any](ctx context.Context, attempts int, interval time.Duration, fn func(ctx context.Context) (T, bool, error)) (T, error) {
	var zero T
	if attempts <= 0 {
		return zero, ErrTimedOut
	}

	for attempt := 1; ; attempt++ {
		value, done, err := fn(ctx)
		if err != nil {
			return zero, err
		}
		if done {
			return value, nil
		}
		if attempt >= attempts {
			return zero, ErrTimedOut
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(interval):
		}
	}
}
