package cli

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/ancare/ancare/internal/common/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "network", err: &httpclient.NetworkError{Method: "GET", URL: "http://x/", Err: errors.New("refused")}, want: true},
		{name: "server error", err: &httpclient.APIError{StatusCode: http.StatusBadGateway}, want: true},
		{name: "not found", err: &httpclient.APIError{StatusCode: http.StatusNotFound}, want: false},
		{name: "parse", err: &httpclient.ParseError{Err: errors.New("bad")}, want: false},
		{name: "cancelled", err: &httpclient.NetworkError{Err: context.Canceled}, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryable(tt.err))
		})
	}
}

func TestWithRetry(t *testing.T) {
	retryDelay = time.Millisecond
	ctx := context.Background()

	calls := 0
	got, err := withRetry(ctx, 3, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &httpclient.APIError{StatusCode: http.StatusServiceUnavailable, Message: "down"}
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)

	calls = 0
	_, err = withRetry(ctx, 3, func(context.Context) (int, error) {
		calls++
		return 0, &httpclient.APIError{StatusCode: http.StatusForbidden, Message: "forbidden"}
	})
	var apiErr *httpclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, 1, calls)

	calls = 0
	_, err = withRetry(ctx, 0, func(context.Context) (int, error) {
		calls++
		return 0, &httpclient.APIError{StatusCode: http.StatusBadGateway}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)

	calls = 0
	_, err = withRetry(ctx, 2, func(context.Context) (int, error) {
		calls++
		return 0, &httpclient.APIError{StatusCode: http.StatusBadGateway, Message: "bad gateway"}
	})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 3, calls)
}
