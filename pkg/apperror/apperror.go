package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an application error. The set is closed; the HTTP boundary
// maps every kind to exactly one status code.
type Kind int

const (
	Internal Kind = iota
	InvalidInput
	Conflict
	InvalidCredentials
	Unauthenticated
	NotFound
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case Conflict:
		return "conflict"
	case InvalidCredentials:
		return "invalid_credentials"
	case Unauthenticated:
		return "unauthenticated"
	case NotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case InvalidInput, Conflict:
		return http.StatusBadRequest
	case InvalidCredentials, Unauthenticated:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is the error type returned by application services.
// Message is safe to show to clients; Err is for server-side logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Invalid(message string) *Error { return New(InvalidInput, message) }

func ConflictErr(message string) *Error { return New(Conflict, message) }

func Credentials(message string) *Error { return New(InvalidCredentials, message) }

func Unauthorized(message string) *Error { return New(Unauthenticated, message) }

func NotFoundErr(message string) *Error { return New(NotFound, message) }

func InternalErr(message string, err error) *Error { return Wrap(Internal, message, err) }

// From returns err as an *Error, wrapping unknown errors as Internal with fallback as the client message.
func From(err error, fallback string) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return InternalErr(fallback, err)
}

// KindOf reports the kind of err, Internal for foreign errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}
