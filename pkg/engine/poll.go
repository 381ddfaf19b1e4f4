package engine

import (
	"context"
	"time"
)

// CheckFunc queries a remote system once.
type CheckFunc[T any] func(ctx context.Context) (T, error)

// Poll calls check until isSuccess accepts its result or maxAttempts checks
// have been made.
//
// The first check runs immediately. Before every further attempt onRetry (if
// non-nil) is called with the number of the attempt that just failed, then
// Poll waits delay. When all attempts fail isSuccess, Poll returns failure.
// An error returned by check is not retried: it ends polling and is returned
// as-is. Cancelling ctx interrupts the wait and returns ctx.Err().
func Poll[T any](
	ctx context.Context,
	check CheckFunc[T],
	isSuccess func(T) bool,
	failure error,
	delay time.Duration,
	maxAttempts int,
	onRetry func(attempt int),
) (T, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	result, err := check(ctx)
	if err != nil {
		return result, err
	}

	attempt := 1
	for !isSuccess(result) && attempt < maxAttempts {
		if onRetry != nil {
			onRetry(attempt)
		}
		if err := wait(ctx, delay); err != nil {
			return result, err
		}

		attempt++
		result, err = check(ctx)
		if err != nil {
			return result, err
		}
	}

	if !isSuccess(result) {
		return result, failure
	}
	return result, nil
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
