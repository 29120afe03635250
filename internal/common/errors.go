package common

import (
	"errors"
	"fmt"
)

// Kind partitions errors by how callers should react to them.
type Kind string

const (
	// KindConfig marks configuration failures (bad provider name, missing
	// credential). Never retried.
	KindConfig Kind = "CONFIG_ERROR"
	// KindValidation marks file validation failures. Surfaced verbatim.
	KindValidation Kind = "VALIDATION_ERROR"
	// KindTransient marks failures that were retried up to the configured
	// limit before being surfaced (timeouts, 5xx, rate limits).
	KindTransient Kind = "TRANSIENT_ERROR"
	// KindPermanent marks provider failures that retrying cannot fix
	// (model not found, invalid credential, malformed request).
	KindPermanent Kind = "PERMANENT_ERROR"
	// KindProcessing marks local processing failures (corrupt PDF, render
	// or conversion failure).
	KindProcessing Kind = "PROCESSING_ERROR"
)

// Error is the application error type carrying a kind, a message and an
// optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates an Error without a cause.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NewErrorf creates an Error with a formatted message.
func NewErrorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates an Error wrapping a cause.
func WrapError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

func IsConfig(err error) bool     { return KindOf(err) == KindConfig }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsTransient(err error) bool  { return KindOf(err) == KindTransient }
func IsPermanent(err error) bool  { return KindOf(err) == KindPermanent }
func IsProcessing(err error) bool { return KindOf(err) == KindProcessing }
