package remote

import (
	"errors"
	"fmt"
)

// ErrAuthTimeout indicates the auth collaborator never became ready
// within the readiness window.
var ErrAuthTimeout = errors.New("auth collaborator not ready")

// APIError is a non-2xx response from the entity API, carrying the
// server-provided detail when one could be decoded.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api error %d", e.Status)
}
