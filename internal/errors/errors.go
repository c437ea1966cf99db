// Package errors provides structured error handling for the application
package errors

import (
	"errors"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Code classifies an error for callers that need to branch on failure kind
type Code = errbuilder.ErrCode

// Generic error codes
var (
	CodeUnknown         = errbuilder.CodeUnknown
	CodeInvalidArgument = errbuilder.CodeInvalidArgument
)

const (
	// Base value for custom codes
	limiterCodeBase = 1000

	// Custom error codes
	CodeEnumeration Code = limiterCodeBase + iota
	CodeNameResolution
	CodePrivilegeOperation
	CodeHandleOpen
	CodeAdjustment
	CodeConfigOperation
	CodeMonitorOperation
	CodeUnsupportedPlatform
)

// Common errors
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("not found")
	ErrEnumeration         = errors.New("process enumeration error")
	ErrNameResolution      = errors.New("process name resolution error")
	ErrPrivilegeOperation  = errors.New("privilege operation error")
	ErrHandleOpen          = errors.New("process handle error")
	ErrAdjustment          = errors.New("process adjustment error")
	ErrConfigOperation     = errors.New("configuration error")
	ErrMonitorOperation    = errors.New("process monitor error")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// codedError carries the built error together with the sentinel it matches.
// The message reads "msg: cause" so callers see the OS error text last.
type codedError struct {
	*errbuilder.ErrBuilder
	code     Code
	sentinel error
	msg      string
	cause    error
}

func (e *codedError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *codedError) Unwrap() error { return e.cause }

func (e *codedError) Is(target error) bool {
	return e.sentinel != nil && target == e.sentinel
}

func coded(code Code, sentinel error, msg string, cause error) error {
	builder := errbuilder.New().
		WithCode(code).
		WithMsg(msg)
	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return &codedError{
		ErrBuilder: builder,
		code:       code,
		sentinel:   sentinel,
		msg:        msg,
		cause:      cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}

	return coded(CodeUnknown, nil, msg, err)
}

// Wrapf wraps an existing error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	return coded(CodeUnknown, nil, fmt.Sprintf(format, args...), err)
}

// Is checks if an error is a specific error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// CodeOf returns the code of the first coded error in err's chain
func CodeOf(err error) Code {
	if err == nil {
		return CodeUnknown
	}

	var ce *codedError
	for errors.As(err, &ce) {
		if ce.code != CodeUnknown {
			return ce.code
		}
		err = ce.cause
		if err == nil {
			break
		}
	}
	return CodeUnknown
}

// ValidationError creates a validation error
func ValidationError(msg string) error {
	return coded(CodeInvalidArgument, ErrInvalidArgument, msg, nil)
}

// EnumerationError returns a process enumeration error
func EnumerationError(msg string, cause error) error {
	return coded(CodeEnumeration, ErrEnumeration, msg, cause)
}

// NameResolutionError returns an error for a PID whose name could not be read
func NameResolutionError(msg string, cause error) error {
	return coded(CodeNameResolution, ErrNameResolution, msg, cause)
}

// PrivilegeError returns a privilege-related error
func PrivilegeError(msg string, cause error) error {
	return coded(CodePrivilegeOperation, ErrPrivilegeOperation, msg, cause)
}

// HandleOpenError returns an error for a process handle that could not be opened
func HandleOpenError(msg string, cause error) error {
	return coded(CodeHandleOpen, ErrHandleOpen, msg, cause)
}

// AdjustmentError returns an error for a failed priority or affinity change
func AdjustmentError(msg string, cause error) error {
	return coded(CodeAdjustment, ErrAdjustment, msg, cause)
}

// ConfigError returns a configuration-related error
func ConfigError(msg string, cause error) error {
	return coded(CodeConfigOperation, ErrConfigOperation, msg, cause)
}

// MonitorError returns a process monitor related error
func MonitorError(msg string) error {
	return coded(CodeMonitorOperation, ErrMonitorOperation, msg, nil)
}

// UnsupportedPlatform returns an error for operations with no implementation on this OS
func UnsupportedPlatform(op string) error {
	return coded(CodeUnsupportedPlatform, ErrUnsupportedPlatform, op+": unsupported platform", nil)
}
