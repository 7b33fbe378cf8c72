// Package errs defines the error kinds surfaced by the pipelines:
// invalid input, a failed provider call, a missing remote asset, and a
// missing auth context. Handlers map these onto HTTP status codes.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError reports missing, oversized or wrongly-typed input.
// Surfaced immediately, never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError from a format string.
func Validation(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ProviderError reports a non-success response from a hosted AI, TTS or
// storage call. StatusCode and Body carry the provider response verbatim
// so the caller can decide whether to retry manually.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error: %d - %s", e.Provider, e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: provider call failed", e.Provider)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NotFoundError reports a remote asset missing at its expected path.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// PermissionError reports a missing or invalid auth context on an
// operation that requires one.
type PermissionError struct {
	Msg string
}

func (e *PermissionError) Error() string { return e.Msg }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
