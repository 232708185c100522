package errors

import (
	crerrors "github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime Category = "runtime"
	CategoryTree    Category = "tree"
	CategoryConfig  Category = "config"
	CategoryCLI     Category = "cli"
)

// Error is a structured error with a code, explanation and fix suggestion.
type Error struct {
	// Code is a unique error identifier (e.g., "M001").
	Code string

	// Category is the error type (runtime, tree, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error

	// redactable keeps the Newf message with its safety markers.
	redactable redact.RedactableString
}

// Error implements the error interface. The wrapped cause, if any, follows
// the message.
func (e *Error) Error() string {
	if e.Wrapped == nil {
		return e.headline()
	}
	return e.headline() + ": " + e.Wrapped.Error()
}

// headline is the code and message without the cause.
func (e *Error) headline() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is an *Error with the same code.
// Errors without a code only match themselves.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Code == "" || t.Code == "" {
		return e == t
	}
	return e.Code == t.Code
}

// SafeFormat implements redact.SafeFormatter. Codes and registered messages
// are safe; arguments passed to Newf keep their own safety.
func (e *Error) SafeFormat(w redact.SafePrinter, _ rune) {
	if e.Code != "" {
		w.Printf("%s: ", redact.SafeString(e.Code))
	}
	if e.redactable != "" {
		w.Print(e.redactable)
	} else {
		w.Print(redact.SafeString(e.Message))
	}
	if e.Wrapped != nil {
		w.Printf(": %v", e.Wrapped)
	}
}

// Redacted returns the error text with unsafe values replaced by markers.
func (e *Error) Redacted() string {
	return string(redact.Sprint(e).Redact())
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// Raise returns e with the caller's stack attached.
func (e *Error) Raise() error {
	return crerrors.WithStackDepth(e, 1)
}

// Assertion returns e with the caller's stack attached, marked as an
// assertion failure. Use it for caller programming errors.
func (e *Error) Assertion() error {
	return crerrors.WithAssertionFailure(crerrors.WithStackDepth(e, 1))
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new Error with a formatted message (no code).
func Newf(category Category, format string, args ...any) *Error {
	rs := redact.Sprintf(format, args...)
	return &Error{
		Category:   category,
		Message:    rs.StripMarkers(),
		redactable: rs,
	}
}

// FromError returns the first *Error in err's chain, or wraps err in a new
// Error with the given code.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if crerrors.As(err, &e) {
		return e
	}
	return New(code).Wrap(err)
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	var e *Error
	if crerrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is forwards to cockroachdb/errors.Is.
func Is(err, reference error) bool {
	return crerrors.Is(err, reference)
}

// IsAssertionFailure reports whether err was raised with Assertion.
func IsAssertionFailure(err error) bool {
	return crerrors.IsAssertionFailure(err)
}
