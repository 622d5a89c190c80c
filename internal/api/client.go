// Package api is the gateway to the ancare backend. Every call goes through
// Client.Request, which sends the session cookie, speaks JSON and reports
// failures as *httpclient.NetworkError, *httpclient.APIError or
// *httpclient.ParseError. The gateway never retries; retry policy belongs to
// the caller.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ancare/ancare/internal/common/httpclient"
	"github.com/ancare/ancare/internal/session"
)

// Request describes one call through the gateway.
type Request struct {
	Path    string            // endpoint path, e.g. "/patients/api/patients/"
	Method  string            // GET when empty
	Headers map[string]string // override the default JSON headers
	Body    any               // JSON-serializable value; []byte and json.RawMessage are sent as-is
}

// Client is the API gateway. It is safe for concurrent use.
type Client struct {
	http    httpclient.Doer
	session *session.Store
}

// New returns a Client sending requests with doer and recording logins in
// store. store may be nil when no session tracking is wanted.
func New(doer httpclient.Doer, store *session.Store) *Client {
	return &Client{http: doer, session: store}
}

// Session returns the store the client records logins in.
func (c *Client) Session() *session.Store {
	return c.session
}

// Request sends req and returns the JSON body of the successful response.
func (c *Client) Request(ctx context.Context, req Request) (json.RawMessage, error) {
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.JSON()
}

func (c *Client) do(ctx context.Context, req Request) (*httpclient.Response, error) {
	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}
	return c.http.DoRequest(ctx, httpclient.RequestOptions{
		Method:  req.Method,
		Path:    req.Path,
		Headers: req.Headers,
		Body:    body,
	})
}

// call sends req and decodes the response into out.
func (c *Client) call(ctx context.Context, req Request, out any) error {
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// DeleteResult is the outcome of a successful delete. Body is empty for
// 204 No Content and holds the JSON the server sent otherwise.
type DeleteResult struct {
	Deleted bool            `json:"deleted"`
	Body    json.RawMessage `json:"body,omitempty"`
}

// remove sends a DELETE. 204 is success without a body; any other 2xx must
// carry valid JSON, which is returned.
func (c *Client) remove(ctx context.Context, path string) (*DeleteResult, error) {
	resp, err := c.do(ctx, Request{Path: path, Method: http.MethodDelete})
	if err != nil {
		return nil, err
	}
	if resp.NoContent() {
		return &DeleteResult{Deleted: true}, nil
	}
	body, err := resp.JSON()
	if err != nil {
		return nil, err
	}
	return &DeleteResult{Deleted: true, Body: body}, nil
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		return data, nil
	}
}

// resourcePath joins a collection path and an ID, keeping the trailing slash
// the backend routes on.
func resourcePath(collection string, id ID) string {
	return collection + url.PathEscape(id.String()) + "/"
}
