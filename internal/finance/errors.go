package finance

import (
	"errors"
	"fmt"
)

// Kind classifies errors crossing the core boundary. The HTTP layer maps
// each kind to a status code; collaborator failures are always surfaced as
// their own kind, never silently treated as "no results".
type Kind string

const (
	KindValidation    Kind = "validation_error"
	KindNotFound      Kind = "not_found"
	KindCollaborator  Kind = "collaborator_error"
	KindSerialization Kind = "serialization_error"
)

// Error is the structured failure carried across the boundary: a kind plus
// a human-readable message, optionally wrapping a cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validationf builds a validation error (malformed transaction, malformed
// range delimiter, empty set where a range is mandatory).
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error (zero matching documents).
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Collaboratorf wraps an embedding or index failure.
func Collaboratorf(err error, format string, args ...any) error {
	return &Error{Kind: KindCollaborator, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Serializationf builds a serialization error (corrupt stored metadata).
func Serializationf(format string, args ...any) error {
	return &Error{Kind: KindSerialization, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from err, or "" for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}
