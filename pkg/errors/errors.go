// Package errors defines the coded errors typesync reports to users.
//
// Every failure that reaches the CLI carries a [Code] so callers can branch
// on the kind of failure without matching message text:
//
//	doc, err := manifest.ReadFile(path)
//	if errors.Is(err, errors.ErrCodeFileNotFound) {
//	    // no package.json here
//	}
//
// Causes are kept, so the standard library's errors.Is/As still see them.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies a category of failure.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"    // bad flag or argument
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"  // not a registry package name
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST" // package.json is not a JSON object
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"   // unreadable .typesyncrc or typesync key
	ErrCodeInvalidVersion  Code = "INVALID_VERSION"  // declared range is not semver
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeRegistry        Code = "REGISTRY_ERROR"  // registry lookup failed (not a 404)
	ErrCodeChangesPending  Code = "CHANGES_PENDING" // --dry=fail found missing typings
	ErrCodeInternal        Code = "INTERNAL_ERROR"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error with a formatted message and cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether any *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage renders err for the terminal: the messages along the chain
// joined by ": ", without codes.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + UserMessage(e.Cause)
}
