package evaluator

import (
	"errors"
	"fmt"
	"tails/internal/object"
)

// RaisedError carries a structured error value out of a builtin so that a
// rescue block can bind its fields.
type RaisedError struct {
	Err *object.Error
}

func (e *RaisedError) Error() string {
	if e.Err.Code != "" {
		return fmt.Sprintf("%s (code %s)", e.Err.Message, e.Err.Code)
	}
	return e.Err.Message
}

// Raise wraps a structured error value as a Go error.
func Raise(err *object.Error) error {
	return &RaisedError{Err: err}
}

// ErrorValue converts any runtime failure into the value a rescue block
// binds.
func ErrorValue(err error) *object.Error {
	var raised *RaisedError
	if errors.As(err, &raised) {
		return raised.Err
	}
	return &object.Error{Message: err.Error()}
}

func newError(format string, a ...interface{}) error {
	return fmt.Errorf(format, a...)
}
