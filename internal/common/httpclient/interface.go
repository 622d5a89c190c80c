package httpclient

import "context"

// Doer is implemented by every client in this package. Higher layers depend
// on it so tests can swap the network for an in-process handler.
type Doer interface {
	// DoRequest makes one request and returns the fully read 2xx response,
	// or a *NetworkError / *APIError.
	DoRequest(ctx context.Context, opts RequestOptions) (*Response, error)
}

var _ Doer = &HTTPClient{}
var _ Doer = &TestHTTPClient{}
