package web

import (
	"context"
	"time"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

const defaultFetchTimeout = 15 * time.Second

// fetchReport computes a report for one request. The computation follows the
// caller's cancellation and is bounded by timeout.
func fetchReport[T any](ctx context.Context, timeout time.Duration, fn FetchFunc[T]) (T, error) {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(fetchCtx)
}
