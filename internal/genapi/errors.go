package genapi

import (
	"errors"
	"fmt"
)

// StatusError reports a non-200 response from the generation service.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: server returned status %d: %s", e.Op, e.Code, e.Body)
}

// IsStatusError reports whether err carries a non-200 response.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// decodeError signals a malformed response body.
type decodeError struct {
	op  string
	err error
}

func (e decodeError) Error() string { return e.op + ": decode response: " + e.err.Error() }
func (e decodeError) Unwrap() error { return e.err }

// IsDecodeError reports whether err comes from an unreadable response payload.
func IsDecodeError(err error) bool {
	var de decodeError
	return errors.As(err, &de)
}

// transportError wraps network failures and timeouts.
type transportError struct {
	op  string
	err error
}

func (e transportError) Error() string { return e.op + ": " + e.err.Error() }
func (e transportError) Unwrap() error { return e.err }

// IsTransportError reports whether err is a network failure or timeout.
func IsTransportError(err error) bool {
	var te transportError
	return errors.As(err, &te)
}
