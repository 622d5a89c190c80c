package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
)

// TestHTTPClient sends requests straight into an http.Handler without a
// network round trip. Responses go through the same status and error
// handling as HTTPClient, and cookies go through the jar when one is given.
type TestHTTPClient struct {
	config  Configurator
	handler http.Handler
	jar     http.CookieJar
}

// NewTestClient creates a TestHTTPClient serving requests with handler.
func NewTestClient(config Configurator, handler http.Handler, opts ...ClientOptions) *TestHTTPClient {
	c := &TestHTTPClient{
		config:  config,
		handler: handler,
	}
	if len(opts) > 0 {
		c.jar = opts[0].Jar
	}
	return c
}

// DoRequest makes the request against the handler using httptest.NewRecorder.
func (c *TestHTTPClient) DoRequest(ctx context.Context, opts RequestOptions) (*Response, error) {
	req, err := newRequest(ctx, c.config.GetServerURL(), opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &NetworkError{Method: req.Method, URL: req.URL.String(), Err: err}
	}

	if c.jar != nil {
		for _, cookie := range c.jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}

	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)
	resp := rr.Result()
	defer resp.Body.Close()

	if c.jar != nil {
		if cookies := resp.Cookies(); len(cookies) > 0 {
			c.jar.SetCookies(req.URL, cookies)
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: req.Method, URL: req.URL.String(), Err: err}
	}
	return handleResponse(resp, body)
}
