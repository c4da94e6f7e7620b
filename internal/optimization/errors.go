package optimization

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is.
var (
	ErrParameterRange     = errors.New("parameter out of range")
	ErrNumericDomain      = errors.New("numeric domain error")
	ErrInvalidSearchSpace = errors.New("invalid search space")
)

// Error represents an optimization error with context
// that can be wrapped with additional information.
type Error struct {
	// Message describes the error that occurred.
	Message string
	// Op is the operation that caused the error.
	Op string
	// Component is the component where the error occurred.
	Component string
	// Err is the underlying error that triggered this one, if any.
	Err error
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var prefix string
	switch {
	case e.Component != "" && e.Op != "":
		prefix = fmt.Sprintf("%s: %s", e.Component, e.Op)
	case e.Component != "":
		prefix = e.Component
	case e.Op != "":
		prefix = e.Op
	}

	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
	}

	if prefix != "" {
		return fmt.Sprintf("%s: %s", prefix, msg)
	}
	return msg
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithOperation adds operation context to the error.
func (e *Error) WithOperation(op string) *Error {
	e.Op = op
	return e
}

// WithComponent adds component context to the error.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// NewError creates a new optimization error with the given message.
func NewError(message string) *Error {
	return &Error{
		Message: message,
	}
}

// NewErrorf creates a new optimization error with formatted message.
func NewErrorf(format string, args ...interface{}) *Error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError wraps an existing error with additional context.
// If err is nil, WrapError returns nil.
func WrapError(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: message,
		Err:     err,
	}
}

// WrapErrorf wraps an existing error with additional formatted context.
// If err is nil, WrapErrorf returns nil.
func WrapErrorf(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// IsOptimizationError reports whether err carries an *Error anywhere in its
// chain and returns the outermost one.
func IsOptimizationError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// ParameterRangeError reports a hyperparameter outside its accepted interval.
type ParameterRangeError struct {
	Name  string
	Value float64
	// Interval in mathematical notation, e.g. "(1, 3]".
	Interval string
}

func (e *ParameterRangeError) Error() string {
	return fmt.Sprintf("%s = %v outside %s", e.Name, e.Value, e.Interval)
}

// Is matches ErrParameterRange.
func (e *ParameterRangeError) Is(target error) bool {
	return target == ErrParameterRange
}

// NumericDomainError reports a real power of a negative base.
type NumericDomainError struct {
	Base     float64
	Exponent float64
}

func (e *NumericDomainError) Error() string {
	return fmt.Sprintf("negative base %g raised to non-integer power %g", e.Base, e.Exponent)
}

// Is matches ErrNumericDomain.
func (e *NumericDomainError) Is(target error) bool {
	return target == ErrNumericDomain
}

// InvalidSearchSpaceError reports malformed bounds or a start point of the
// wrong dimension.
type InvalidSearchSpaceError struct {
	Reason string
}

func (e *InvalidSearchSpaceError) Error() string {
	return "invalid search space: " + e.Reason
}

// Is matches ErrInvalidSearchSpace.
func (e *InvalidSearchSpaceError) Is(target error) bool {
	return target == ErrInvalidSearchSpace
}
