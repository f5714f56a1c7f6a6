package rentease

import (
	"errors"
	"fmt"
)

// NetworkError indicates that no response was received from the backend
// (connection refused, timeout, cancelled context).
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError indicates a non-2xx response. The body is retained so that
// callers can branch on status code and surface the backend's message.
type HTTPError struct {
	Status int
	Body   string
	URL    string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned status %d for %s", e.Status, e.URL)
	}
	return fmt.Sprintf("backend returned status %d for %s: %s", e.Status, e.URL, e.Body)
}

// SchemaError indicates that a 2xx response body could not be decoded into
// the expected shape.
type SchemaError struct {
	URL string
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("decoding response from %s: %v", e.URL, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// StatusOf returns the HTTP status carried by err, or 0 if err is not an
// HTTPError.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}
