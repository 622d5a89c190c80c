package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ancare/ancare/internal/common/httpclient"
	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
)

// retries is the --retries flag shared by read commands.
var retries uint

var retryDelay = 500 * time.Millisecond

// retryable reports whether err is worth another attempt: transport failures
// and server-side (5xx) errors. A cancelled context never is.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, httpclient.ErrNetwork) {
		return true
	}
	var apiErr *httpclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// withRetry calls fn up to 1+attempts times while it fails with a retryable
// error, backing off between attempts.
func withRetry[T any](ctx context.Context, attempts uint, fn func(context.Context) (T, error)) (T, error) {
	if attempts == 0 {
		return fn(ctx)
	}
	return retry.DoWithData(
		func() (T, error) { return fn(ctx) },
		retry.Context(ctx),
		retry.Attempts(attempts+1),
		retry.Delay(retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Msg("request failed, retrying")
		}),
	)
}
