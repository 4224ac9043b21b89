package service

import "errors"

// Kind classifies a service failure. Handlers map each kind to one HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindInvalid
	KindNotRegistered
)

// String returns the kind name used in logs and error codes.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindForbidden:
		return "FORBIDDEN"
	case KindConflict:
		return "CONFLICT"
	case KindInvalid:
		return "INVALID"
	case KindNotRegistered:
		return "NOT_REGISTERED"
	default:
		return "INTERNAL"
	}
}

// Error is a client-facing failure with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Kind == t.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrNotFound      = &Error{Kind: KindNotFound, Message: "not found"}
	ErrForbidden     = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrConflict      = &Error{Kind: KindConflict, Message: "conflict"}
	ErrInvalid       = &Error{Kind: KindInvalid, Message: "invalid input"}
	ErrNotRegistered = &Error{Kind: KindNotRegistered, Message: "not registered"}
)

// KindOf returns the kind of err, or KindInternal if err is not a service error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func notFound(msg string) error      { return &Error{Kind: KindNotFound, Message: msg} }
func forbidden(msg string) error     { return &Error{Kind: KindForbidden, Message: msg} }
func conflict(msg string) error      { return &Error{Kind: KindConflict, Message: msg} }
func invalid(msg string) error       { return &Error{Kind: KindInvalid, Message: msg} }
func notRegistered(msg string) error { return &Error{Kind: KindNotRegistered, Message: msg} }
