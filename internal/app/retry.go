package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_pms/internal/adapters/observability"
	"hotel_pms/internal/domain"
)

// CallWithRetry calls fn(ctx, arg) at most attempts times with a fixed wait
// between attempts. Only domain.ErrVendorAPI failures are retried; any other
// error is returned at once. After the last failed attempt the vendor error
// is returned wrapped.
func CallWithRetry[T any](
	ctx context.Context,
	endpoint string,
	fn func(context.Context, string) (T, error),
	arg string,
	attempts int,
	wait time.Duration,
) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = 1
	}
	for left := attempts; ; left-- {
		v, err := fn(ctx, arg)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, domain.ErrVendorAPI) {
			return zero, err
		}
		if left <= 1 {
			return zero, fmt.Errorf("%s(%s): %d attempts failed: %w", endpoint, arg, attempts, err)
		}
		log.Warn().Err(err).
			Str("endpoint", endpoint).
			Str("arg", arg).
			Int("attempts_left", left-1).
			Dur("wait", wait).
			Msg("vendor call failed, retrying")
		observability.ObserveRetry(endpoint)
		if !sleepCtx(ctx, wait) {
			return zero, fmt.Errorf("%s(%s): %w", endpoint, arg, ctx.Err())
		}
	}
}

// sleepCtx waits for d or returns false early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
