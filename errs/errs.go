package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration reports an out-of-range tunable such as a fade
	// fraction outside [0, 1] or a non-positive resize target.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrResolutionExceedsBandwidth reports an image taller than the number of
	// bins available in the narrowest frequency band.
	ErrResolutionExceedsBandwidth = errors.New("resolution exceeds bandwidth")

	// ErrUnsupportedAudioFormat reports audio the codec cannot consume, such
	// as stereo or multichannel input.
	ErrUnsupportedAudioFormat = errors.New("unsupported audio format")

	// ErrDimensionMismatch reports a segment count or length that disagrees
	// with the layout the caller supplied.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// Error carries the offending value and the range it was expected in.
type Error struct {
	Code     error  // one of the sentinel errors
	Field    string // name of the parameter at fault
	Value    any    // value that was rejected
	Expected string // human readable description of the valid range
}

func (e *Error) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("%v: %s=%v", e.Code, e.Field, e.Value)
	}
	return fmt.Sprintf("%v: %s=%v, expected %s", e.Code, e.Field, e.Value, e.Expected)
}

func (e *Error) Unwrap() error {
	return e.Code
}

// New creates a new error for code.
func New(code error, field string, value any, expected string) *Error {
	return &Error{
		Code:     code,
		Field:    field,
		Value:    value,
		Expected: expected,
	}
}

// Invalid is shorthand for an ErrInvalidConfiguration error.
func Invalid(field string, value any, expected string) *Error {
	return New(ErrInvalidConfiguration, field, value, expected)
}

// Mismatch is shorthand for an ErrDimensionMismatch error.
func Mismatch(field string, value any, expected string) *Error {
	return New(ErrDimensionMismatch, field, value, expected)
}
