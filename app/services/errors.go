package services

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds. Controllers map each kind to an HTTP status; anything that is
// not one of these is an internal failure.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
)

// Error is a client-facing failure. Message is safe to send back as is.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes both the kind and the underlying cause to errors.Is.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, cause error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

func postNotFound(id string) error {
	return newError(ErrNotFound, nil, "No post with id %s", id)
}

func userNotFound() error {
	return newError(ErrNotFound, nil, "User doesn't exist")
}

func unauthenticated() error {
	return newError(ErrUnauthenticated, nil, "Unauthenticated")
}

func invalidInput(err error) error {
	return newError(ErrInvalidInput, err, "%s", err.Error())
}
