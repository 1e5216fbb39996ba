// Package apperr defines the error taxonomy shared by the domain services
// and translated to HTTP status codes at the handler boundary.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies a domain error
type Kind int

// Error kinds
const (
	NotFound Kind = iota + 1
	InvalidState
	Forbidden
	Conflict
	ValidationError
	DependencyFailure
)

// Error carries a kind and a user-facing message
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// E creates a domain error
func E(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind of err, or 0 if err is not a domain error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Is reports whether err is a domain error of the given kind
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to the HTTP status code the REST layer returns.
// Unclassified errors are treated as unexpected persistence failures.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case NotFound:
		return fiber.StatusNotFound
	case InvalidState, ValidationError:
		return fiber.StatusBadRequest
	case Forbidden:
		return fiber.StatusForbidden
	case Conflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
