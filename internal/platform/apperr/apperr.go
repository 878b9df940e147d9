// Package apperr defines the error kinds the domain services return. The HTTP
// boundary maps each kind to exactly one status code.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a domain error.
type Kind int

const (
	// KindUnknown is any error that did not originate as an *Error.
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Error is a tagged domain error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports a missing customer or health problem.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a uniqueness violation.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Invalid reports malformed input.
func Invalid(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a tagged error.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the message of the first *Error in err's chain, or
// err.Error() when there is none.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool { return KindOf(err) == KindConflict }
func IsInvalid(err error) bool  { return KindOf(err) == KindInvalid }

// Violations collects field-level validation failures into one Invalid error.
type Violations []string

// Check records msg when ok is false.
func (v *Violations) Check(ok bool, msg string) {
	if !ok {
		*v = append(*v, msg)
	}
}

// Err returns nil when nothing was recorded.
func (v Violations) Err() error {
	if len(v) == 0 {
		return nil
	}
	return Invalid("%s", strings.Join(v, ", "))
}
