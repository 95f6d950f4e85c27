// Package apperr defines the coded error kinds shared by the extraction,
// parsing and proxy layers. Handlers convert them into the JSON error
// contract at the HTTP boundary; nothing below the boundary formats
// user-visible payloads.
package apperr

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	EINPUT       = "input_missing"
	ENETWORK     = "network"
	EDECODE      = "decode"
	EDEPENDENCY  = "dependency_missing"
	EEXTRACT     = "extraction"
	EUNSUPPORTED = "unsupported_format"
	EUPSTREAM    = "upstream"
	EINTERNAL    = "internal"
)

// Error carries a code, a user-facing message and an optional cause.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf returns an *Error with the given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to err. A nil err yields nil.
func Wrap(code string, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// Code returns the code of the outermost *Error in err's chain, or EINTERNAL
// for errors that carry none. A nil error has no code.
func Code(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// Message renders err for a client payload. Coded errors keep their cause so
// the caller sees e.g. the dial failure behind a network error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return Code(err) == code
}
