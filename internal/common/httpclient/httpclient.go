// Package httpclient is the single chokepoint for HTTP calls to the ancare
// backend. It resolves endpoint paths against a configured server URL, sends
// the session cookie through a cookie jar, sets JSON headers, and turns
// transport failures, non-2xx responses and malformed bodies into
// NetworkError, APIError and ParseError respectively.
//
// The client never retries: every DoRequest is exactly one round trip.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ancare/ancare/internal/common/logtrace"
	"github.com/rs/zerolog/log"
)

// Configurator provides the server location and request limits.
type Configurator interface {
	GetServerURL() string
	// GetRequestTimeout returns the per-request timeout. Zero means none.
	GetRequestTimeout() time.Duration
}

// HTTPClient sends requests to the configured backend.
type HTTPClient struct {
	config     Configurator
	httpClient *http.Client
}

// ClientOptions contains options for configuring the HTTP client.
type ClientOptions struct {
	Jar       http.CookieJar    // cookie store; nil disables cookies
	Transport http.RoundTripper // nil uses http.DefaultTransport
}

// NewClient creates a new HTTP client using the provided configuration.
func NewClient(config Configurator, opts ...ClientOptions) *HTTPClient {
	clientOpts := ClientOptions{}
	if len(opts) > 0 {
		clientOpts = opts[0]
	}
	return &HTTPClient{
		config: config,
		httpClient: &http.Client{
			Jar:       clientOpts.Jar,
			Transport: clientOpts.Transport,
		},
	}
}

// RequestOptions describes one outgoing call.
type RequestOptions struct {
	Method      string            // HTTP method, GET when empty
	Path        string            // endpoint path relative to the server URL
	QueryParams map[string]string // optional query parameters
	Headers     map[string]string // override the default headers
	Body        []byte            // optional JSON body
}

// Response is a successful (2xx) response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// NoContent reports whether the server answered 204.
func (r *Response) NoContent() bool {
	return r.StatusCode == http.StatusNoContent
}

// Decode unmarshals the body into v. A body that is not valid JSON yields a
// ParseError.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &ParseError{StatusCode: r.StatusCode, Body: r.Body, Err: err}
	}
	return nil
}

// JSON returns the body after checking that it is valid JSON.
func (r *Response) JSON() (json.RawMessage, error) {
	if !json.Valid(r.Body) {
		return nil, &ParseError{
			StatusCode: r.StatusCode,
			Body:       r.Body,
			Err:        errors.New("body is not valid JSON"),
		}
	}
	return json.RawMessage(r.Body), nil
}

// DoRequest makes one HTTP request. It returns a *Response for 2xx statuses,
// a *NetworkError when the round trip fails and an *APIError otherwise.
func (c *HTTPClient) DoRequest(ctx context.Context, opts RequestOptions) (*Response, error) {
	if timeout := c.config.GetRequestTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := newRequest(ctx, c.config.GetServerURL(), opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	logger := log.With().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("request_id", logtrace.RequestIdFromContext(ctx)).
		Logger()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug().Err(err).Msg("request failed")
		return nil, &NetworkError{Method: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Debug().Err(err).Msg("failed to read response body")
		return nil, &NetworkError{Method: req.Method, URL: req.URL.String(), Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request completed")

	return handleResponse(resp, body)
}

// newRequest builds the *http.Request for opts: the path is appended to the
// server URL as-is (trailing slashes matter to the backend), JSON content type
// is set first and caller headers override it.
func newRequest(ctx context.Context, serverURL string, opts RequestOptions) (*http.Request, error) {
	u, err := resolveURL(serverURL, opts)
	if err != nil {
		return nil, err
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id := logtrace.RequestIdFromContext(ctx); id != "" {
		req.Header.Set(logtrace.RequestIDHeader, id)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func resolveURL(serverURL string, opts RequestOptions) (*url.URL, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL: %q", serverURL)
	}

	p, rawQuery, _ := strings.Cut(opts.Path, "?")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	// p is already escaped; keep the raw form so escaped IDs survive.
	unescaped, err := url.PathUnescape(p)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", opts.Path, err)
	}
	u.RawPath = strings.TrimSuffix(u.EscapedPath(), "/") + p
	u.Path = strings.TrimSuffix(u.Path, "/") + unescaped
	u.RawQuery = rawQuery

	if len(opts.QueryParams) > 0 {
		q := u.Query()
		for k, v := range opts.QueryParams {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

func handleResponse(resp *http.Response, body []byte) (*Response, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp, body)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
