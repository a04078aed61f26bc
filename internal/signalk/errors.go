package signalk

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for navigation server operations.
var (
	// ErrServiceUnreachable indicates a transport failure talking to the server.
	ErrServiceUnreachable = errors.New("signalk: service unreachable")

	// ErrNotFound indicates the server answered 404.
	ErrNotFound = errors.New("signalk: resource not found")

	// ErrInvalidURL indicates a base URL that is not absolute http(s).
	ErrInvalidURL = errors.New("signalk: invalid server URL")

	// ErrInvalidHref indicates a resource reference without an id segment.
	ErrInvalidHref = errors.New("signalk: invalid resource href")
)

// StatusError is returned when the server answers with an unexpected status.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("signalk: %s: %d %s", e.Op, e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("signalk: %s: %d %s: %s", e.Op, e.Code, http.StatusText(e.Code), e.Body)
}

// IsClientError reports statuses below 500. Those are answers to the
// request as sent and are not retried.
func (e *StatusError) IsClientError() bool {
	return e.Code < http.StatusInternalServerError
}

// Is matches ErrNotFound for 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}
