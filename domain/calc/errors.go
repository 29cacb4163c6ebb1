package calc

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures so that transports can map them
// without inspecting messages.
type ErrorKind int

// Error kinds produced by the engine.
const (
	// KindUnknownOperator is a failed operator lookup.
	KindUnknownOperator ErrorKind = iota + 1
	// KindInvalidArgument covers wrong arity, negative precision and
	// malformed numbers. It is a client error.
	KindInvalidArgument
	// KindArithmetic is a well-formed request without a mathematical result
	// (division by zero, factorial outside its domain).
	KindArithmetic
	// KindComputationTooLarge is an input above a hard safety ceiling.
	// It is a variant of KindArithmetic.
	KindComputationTooLarge
)

var kindNames = map[ErrorKind]string{
	KindUnknownOperator:     "unknown_operator",
	KindInvalidArgument:     "invalid_argument",
	KindArithmetic:          "arithmetic",
	KindComputationTooLarge: "computation_too_large",
}

// String returns the wire code of the kind.
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ParseErrorKind converts a wire code back to an ErrorKind.
func ParseErrorKind(s string) (ErrorKind, bool) {
	for kind, name := range kindNames {
		if name == s {
			return kind, true
		}
	}
	return 0, false
}

// Error is the single error type returned by the engine.
type Error struct {
	Kind ErrorKind
	Msg  string
}

// Sentinel errors for errors.Is checks. Matching is by kind only, so any
// *Error of the same kind matches; ErrArithmetic also matches
// KindComputationTooLarge.
var (
	ErrUnknownOperator     = &Error{Kind: KindUnknownOperator, Msg: "unknown operator"}
	ErrInvalidArgument     = &Error{Kind: KindInvalidArgument, Msg: "invalid argument"}
	ErrArithmetic          = &Error{Kind: KindArithmetic, Msg: "arithmetic error"}
	ErrComputationTooLarge = &Error{Kind: KindComputationTooLarge, Msg: "computation too large"}
)

// NewError creates an engine error of the given kind.
func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func (e *Error) Error() string {
	return e.Msg
}

// Is reports whether target is an *Error of a matching kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == e.Kind {
		return true
	}
	return t.Kind == KindArithmetic && e.Kind == KindComputationTooLarge
}

// IsArithmetic reports whether err is a domain-level non-result that should
// be reported inside a successful response.
func IsArithmetic(err error) bool {
	return errors.Is(err, ErrArithmetic)
}

// KindOf returns the kind of an engine error, or 0 for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func unknownOperatorf(format string, args ...any) *Error {
	return NewError(KindUnknownOperator, fmt.Sprintf(format, args...))
}

func invalidArgumentf(format string, args ...any) *Error {
	return NewError(KindInvalidArgument, fmt.Sprintf(format, args...))
}

func arithmeticf(format string, args ...any) *Error {
	return NewError(KindArithmetic, fmt.Sprintf(format, args...))
}

func tooLargef(format string, args ...any) *Error {
	return NewError(KindComputationTooLarge, fmt.Sprintf(format, args...))
}
