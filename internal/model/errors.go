package model

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes request failures.
type ErrorCode string

const (
	// ErrCodeParse indicates a numeric text field is missing or not a number.
	ErrCodeParse ErrorCode = "PARSE_ERROR"

	// ErrCodeParameter indicates an invalid parameter: a missing interval
	// bound, x1 > x2, xmin >= xmax, N < 2, or an unknown interval kind.
	ErrCodeParameter ErrorCode = "PARAMETER_ERROR"

	// ErrCodeExpression indicates an expression that does not parse, uses a
	// symbol outside the allowed vocabulary, or evaluates to a non-finite
	// value inside its active interval.
	ErrCodeExpression ErrorCode = "EXPRESSION_ERROR"

	// ErrCodeIncompatibleGrid indicates discrete convolution of signals
	// sampled with different steps.
	ErrCodeIncompatibleGrid ErrorCode = "INCOMPATIBLE_GRID"

	// ErrCodeCancelled indicates the request was cancelled or hit its deadline.
	ErrCodeCancelled ErrorCode = "CANCELLED"
)

// Error is the single error type returned by the sigconv core.
// Every failure aborts only the request that triggered it.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Field names the offending input (e.g. "f.interval.x1", "domain.n").
	Field string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithField returns a copy of e with Field prefixed by prefix.
// Used by callers that know which input an error came from.
func (e *Error) WithField(prefix string) *Error {
	c := *e
	switch {
	case prefix == "":
	case c.Field == "":
		c.Field = prefix
	default:
		c.Field = prefix + "." + c.Field
	}
	return &c
}

// NewParseError creates an Error for unparseable numeric text.
func NewParseError(field, text string, cause error) *Error {
	return &Error{
		Code:    ErrCodeParse,
		Message: fmt.Sprintf("invalid number %q", text),
		Field:   field,
		Err:     cause,
	}
}

// NewParameterError creates an Error for an invalid parameter.
func NewParameterError(field, message string) *Error {
	return &Error{Code: ErrCodeParameter, Message: message, Field: field}
}

// NewExpressionError creates an Error for an invalid or failing expression.
func NewExpressionError(message string, cause error) *Error {
	return &Error{Code: ErrCodeExpression, Message: message, Err: cause}
}

// NewIncompatibleGridError creates an Error for mismatched sampling steps.
func NewIncompatibleGridError(dtA, dtB float64) *Error {
	return &Error{
		Code:    ErrCodeIncompatibleGrid,
		Message: fmt.Sprintf("sampling steps differ (dt=%g vs dt=%g)", dtA, dtB),
	}
}

// NewCancelledError wraps a context error.
func NewCancelledError(cause error) *Error {
	return &Error{Code: ErrCodeCancelled, Message: "convolution cancelled", Err: cause}
}

// CodeOf returns the ErrorCode of err, or "" if err is not an *Error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsParseError returns true if err is a parse error.
func IsParseError(err error) bool {
	return CodeOf(err) == ErrCodeParse
}

// IsParameterError returns true if err is a parameter error.
func IsParameterError(err error) bool {
	return CodeOf(err) == ErrCodeParameter
}

// IsExpressionError returns true if err is an expression error.
func IsExpressionError(err error) bool {
	return CodeOf(err) == ErrCodeExpression
}

// IsIncompatibleGridError returns true if err is an incompatible grid error.
func IsIncompatibleGridError(err error) bool {
	return CodeOf(err) == ErrCodeIncompatibleGrid
}

// IsCancelled returns true if err is a cancellation error.
func IsCancelled(err error) bool {
	return CodeOf(err) == ErrCodeCancelled
}
