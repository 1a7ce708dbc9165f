// Package apperr defines the error conditions surfaced to API clients and
// maps them to HTTP statuses. Everything here is recoverable; none of these
// errors are fatal to the process.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrUnauthenticated means no identity could be resolved for the request.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrQuotaExceeded means no subscription exists or its allowance is used
	// up. Not retryable client-side; requires a plan change.
	ErrQuotaExceeded = errors.New("monthly query limit reached")

	// ErrNotFound covers both a missing row and a row owned by someone else.
	// The store cannot tell the two apart and deliberately does not try.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports every invalid field at once, so the caller learns
// the full set in a single round trip. Fields keep a fixed order for
// deterministic messages.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// BackendError wraps a store or broker failure whose message must reach the
// user verbatim.
type BackendError struct {
	Err error
}

func (e *BackendError) Error() string { return e.Err.Error() }
func (e *BackendError) Unwrap() error { return e.Err }

// Backend wraps err as a BackendError, annotated with the failing operation.
func Backend(op string, err error) error {
	return &BackendError{Err: fmt.Errorf("%s: %w", op, err)}
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	var ve *ValidationError
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrQuotaExceeded):
		return fiber.StatusPaymentRequired
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
