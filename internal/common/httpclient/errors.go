package httpclient

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ancare/ancare/internal/common/apperrors"
	"github.com/tidwall/gjson"
)

var (
	// ErrRequest is the root of every error returned by this package.
	ErrRequest = apperrors.New("api request failed")
	// ErrNetwork matches transport failures.
	ErrNetwork = ErrRequest.New("network error")
	// ErrAPI matches non-2xx responses.
	ErrAPI = ErrRequest.New("api error")
	// ErrParse matches successful responses whose body is not valid JSON.
	ErrParse = ErrRequest.New("invalid response body")
)

// NetworkError is returned when the HTTP round trip itself fails: connection
// refused, DNS, TLS, a cancelled context, or a broken response body.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request failed: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork || target == ErrRequest
}

// APIError represents a response whose status is outside 200-299.
type APIError struct {
	StatusCode int         // HTTP status code of the response
	StatusText string      // reason phrase, e.g. "Not Found"
	Message    string      // server supplied message or a synthesized one
	Body       []byte      // raw response body
	Header     http.Header // response headers
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Is(target error) bool {
	return target == ErrAPI || target == ErrRequest
}

// ParseError is returned when a 2xx response body is not valid JSON.
type ParseError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool {
	return target == ErrParse || target == ErrRequest
}

// newAPIError builds an APIError from a failed response. The body is read
// as JSON when possible; "message" wins over "detail", and without either
// the message is synthesized from the status line.
func newAPIError(resp *http.Response, body []byte) *APIError {
	statusText := statusText(resp)
	msg := ""
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		if m := parsed.Get("message"); m.Exists() && m.String() != "" {
			msg = m.String()
		} else if d := parsed.Get("detail"); d.Exists() && d.String() != "" {
			msg = d.String()
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, statusText)
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		StatusText: statusText,
		Message:    msg,
		Body:       body,
		Header:     resp.Header,
	}
}

// statusText returns the reason phrase of the response, falling back to the
// standard text for the code.
func statusText(resp *http.Response) string {
	code := fmt.Sprintf("%d", resp.StatusCode)
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
