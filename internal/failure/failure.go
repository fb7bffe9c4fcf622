// Package failure defines the fatal error kinds a bronze run can end with.
//
// Every kind is terminal: callers never retry, they surface the error and exit
// with the code returned by ExitCode.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal run error.
type Kind int

const (
	KindUnknown       Kind = iota // Not produced by this package.
	KindSourceRead                // Source file missing, unreadable, or unsupported.
	KindConfiguration             // Thresholds missing or no columns survive filtering.
	KindArithmetic                // Degenerate input, e.g. a zero-row source.
)

func (k Kind) String() string {
	switch k {
	case KindSourceRead:
		return "SourceReadError"
	case KindConfiguration:
		return "ConfigurationError"
	case KindArithmetic:
		return "ArithmeticError"
	default:
		return "UnknownError"
	}
}

// Error is a classified fatal error. It may wrap an underlying cause.
type Error struct {
	kind Kind
	msg  string
	err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.msg != "" && e.err != nil:
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.err)
	case e.msg != "":
		return fmt.Sprintf("%s: %s", e.kind, e.msg)
	case e.err != nil:
		return fmt.Sprintf("%s: %v", e.kind, e.err)
	default:
		return e.kind.String()
	}
}

// Kind returns the classification.
func (e *Error) Kind() Kind { return e.kind }

// Msg returns the descriptive message, if any.
func (e *Error) Msg() string { return e.msg }

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.err }

// SourceRead wraps err as a SourceReadError.
func SourceRead(msg string, err error) error {
	return &Error{kind: KindSourceRead, msg: msg, err: err}
}

// Configuration builds a ConfigurationError. err may be nil.
func Configuration(msg string, err error) error {
	return &Error{kind: KindConfiguration, msg: msg, err: err}
}

// Arithmetic builds an ArithmeticError.
func Arithmetic(msg string) error {
	return &Error{kind: KindArithmetic, msg: msg}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// ExitCode maps err to a process exit status: 0 for nil, 2..4 for the
// classified kinds, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindSourceRead:
		return 2
	case KindConfiguration:
		return 3
	case KindArithmetic:
		return 4
	default:
		return 1
	}
}
