package catwalk

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrCollaboratorUnavailable is returned once a call has failed on every
// attempt allowed by the RetryPolicy.
var ErrCollaboratorUnavailable = errors.New("catwalk: collaborator unavailable")

type unavailableError struct {
	call     string
	attempts int
	err      error
}

func (e *unavailableError) Error() string {
	return fmt.Sprintf("%v: %s failed after %d attempts: %v", ErrCollaboratorUnavailable, e.call, e.attempts, e.err)
}

func (e *unavailableError) Is(target error) bool { return target == ErrCollaboratorUnavailable }

func (e *unavailableError) Unwrap() error { return e.err }

// StatusError is an unexpected HTTP status from the collaborator.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("catwalk: %s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Temporary reports whether retrying the request could succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusRequestTimeout
}
