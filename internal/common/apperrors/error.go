// Package apperrors provides chainable errors that carry an HTTP status code.
// Errors built here work with errors.Is and errors.As across the whole chain,
// so a caller can match a sentinel no matter how many times it was wrapped.
package apperrors

// Error extends the standard error interface with wrapping and status codes.
// Methods never mutate the receiver; each returns a new Error.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error     // creates a new error using current as template
	Msg(msg string) Error     // creates a new error with message and wraps original
	Err(err ...error) Error   // attaches additional errors to current error
	SetStatusCode(int) Error  // sets HTTP status code for the error
	StatusCode() int          // returns the current status code
	ErrorAll() string         // returns full message including wrapped errors
}
