// Package errs carries the error kinds shared by the service and transport layers.
//
// An *Error records the operation that failed, the kind the caller should react
// to and the underlying cause. errors.Is matches both the kind and the cause.
package errs

import (
	"errors"
	"strings"
)

// Error kinds.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrInternal   = errors.New("internal error")
)

// Error is an operation-scoped error carrying a kind and an optional cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	case e.Kind != nil:
		b.WriteString(e.Kind.Error())
	default:
		b.WriteString("unknown error")
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of the given kind with no further cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// Wrap attaches op to err, keeping whatever kind err already carries.
// Errors without a kind are treated as internal.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: KindOf(err), Err: err}
}

// WrapKind attaches op and an explicit kind to err.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return NewKind(op, kind)
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Validation is shorthand for a validation error with a message.
func Validation(op, msg string) error {
	return WrapKind(op, ErrValidation, errors.New(msg))
}

// KindOf reports the kind carried by err, defaulting to ErrInternal.
func KindOf(err error) error {
	for _, k := range []error{ErrNotFound, ErrValidation, ErrConflict, ErrInternal} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}

// Message returns the innermost human readable message, without op prefixes.
func Message(err error) string {
	var e *Error
	for errors.As(err, &e) {
		if e.Err == nil {
			return e.Kind.Error()
		}
		err = e.Err
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
