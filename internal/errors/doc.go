// Package errors provides structured, actionable errors for the mutate module.
//
// Every error carries a code (e.g. "M001") that maps to a registered
// template with a category, a short message and a longer explanation.
// Errors are raised through github.com/cockroachdb/errors so that they carry
// stack traces, and caller bugs such as disposing a subscription twice are
// additionally marked as assertion failures.
//
// # Error Categories
//
//   - runtime: listener registration and disposal errors
//   - tree: invalid node tree operations
//   - config: configuration loading and validation errors
//   - cli: command-line errors
//
// # Usage
//
//	err := errors.New(errors.CodeInvalidScope).
//	    WithSuggestion("Pass doc.DocumentElement() instead").
//	    Raise()
//
//	if errors.Is(err, errors.New(errors.CodeInvalidScope)) { ... }
//
// Values formatted into messages with Newf go through
// github.com/cockroachdb/redact, so Redacted strips anything that was not
// explicitly marked safe.
package errors
