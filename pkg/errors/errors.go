// Package errors provides the typed failures raised by the reconstruction and
// image processing pipeline so callers can branch on the kind of failure.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	KindUnknown Kind = iota
	DecodeError
	EmptyInput
	DimensionMismatch
	IndexOutOfRange
	InvalidVariant
	InvalidThreshold
	InvalidKernelSize
	UnknownKey
)

func (k Kind) String() string {
	switch k {
	case DecodeError:
		return "decode-error"
	case EmptyInput:
		return "empty-input"
	case DimensionMismatch:
		return "dimension-mismatch"
	case IndexOutOfRange:
		return "index-out-of-range"
	case InvalidVariant:
		return "invalid-variant"
	case InvalidThreshold:
		return "invalid-threshold"
	case InvalidKernelSize:
		return "invalid-kernel-size"
	case UnknownKey:
		return "unknown-key"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is comparisons. Any *Error of the same kind matches.
var (
	ErrDecode            = &Error{Kind: DecodeError}
	ErrEmptyInput        = &Error{Kind: EmptyInput}
	ErrDimensionMismatch = &Error{Kind: DimensionMismatch}
	ErrIndexOutOfRange   = &Error{Kind: IndexOutOfRange}
	ErrInvalidVariant    = &Error{Kind: InvalidVariant}
	ErrInvalidThreshold  = &Error{Kind: InvalidThreshold}
	ErrInvalidKernelSize = &Error{Kind: InvalidKernelSize}
	ErrUnknownKey        = &Error{Kind: UnknownKey}
)

// Error is a pipeline failure of a specific kind.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New creates an error of the given kind for operation op.
func New(kind Kind, op string, format string, args ...interface{}) *Error {
	return &Error{
		Kind: kind,
		Op:   op,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap creates an error of the given kind that wraps err.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{
		Kind: kind,
		Op:   op,
		Err:  err,
	}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
