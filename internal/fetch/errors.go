package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// NetworkError is returned when a request did not produce a response:
// connection refused, DNS failure, timeout or an unreadable body.
type NetworkError struct {
	// Method and URL identify the request.
	Method string
	URL    string

	// Err is the underlying transport error.
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request failed because it ran out of time.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// HTTPStatusError is returned for a response with a non-2xx status code.
type HTTPStatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d %s: %s %s",
		e.StatusCode, http.StatusText(e.StatusCode), e.Method, e.URL)
}
