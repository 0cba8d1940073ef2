// Package query defines the answering-backend boundary: a handler that
// turns one rendered question into a structured answer, and the tagged
// error kinds the orchestrator keys its control flow on.
package query

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a query failure. The orchestrator and retry wrapper
// branch on these tags instead of unwinding through panics, so backoff is a
// plain loop over explicit outcomes.
type ErrorKind int

const (
	// KindTransient covers rate limiting and transient network failures.
	// Retry-eligible at the batch level.
	KindTransient ErrorKind = iota

	// KindValidation means the answer did not conform to the response
	// schema. Recorded as a per-question failure, never retried.
	KindValidation

	// KindFatal is an unrecoverable backend failure. Aborts the current
	// stage.
	KindFatal
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindValidation:
		return "validation"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error is a classified query failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("query %s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Transient wraps err as a retry-eligible failure.
func Transient(err error) error { return &Error{Kind: KindTransient, Err: err} }

// Validation wraps err as a schema-mismatch failure.
func Validation(err error) error { return &Error{Kind: KindValidation, Err: err} }

// Fatal wraps err as an unrecoverable failure.
func Fatal(err error) error { return &Error{Kind: KindFatal, Err: err} }

func kindOf(err error) (ErrorKind, bool) {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Kind, true
	}
	return 0, false
}

// IsTransient reports whether err is classified as transient.
func IsTransient(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindTransient
}

// IsValidation reports whether err is classified as a schema mismatch.
func IsValidation(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindValidation
}

// IsFatal reports whether err is classified as unrecoverable. Unclassified
// errors are treated as fatal by callers, not by this predicate.
func IsFatal(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindFatal
}
