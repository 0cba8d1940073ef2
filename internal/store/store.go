// Package store persists answers durably, keyed by question fingerprint.
// Each pipeline stage owns its own namespace (one SQLite file per stage) so
// cross-domain reruns never collide on fingerprints.
package store

import (
	"context"
	"errors"

	"robora/internal/question"
)

// ErrConflict is returned when a fingerprint already holds a different
// payload. Writing an identical payload twice is a no-op; rewriting with a
// different one would break the at-most-once guarantee, so it is rejected.
var ErrConflict = errors.New("store: fingerprint already answered with a different payload")

// Provider is the durable key→answer contract the orchestrator runs
// against. Implementations must tolerate interleaved reads from one stage
// while a different namespace is being written; provider instances are
// never shared across domain sub-runs.
type Provider interface {
	// Exists reports whether an answer for the fingerprint is already
	// persisted.
	Exists(ctx context.Context, fingerprint string) (bool, error)

	// Put persists one answer. Idempotent for identical payloads; returns
	// ErrConflict when the fingerprint holds a different payload.
	Put(ctx context.Context, ans *question.Answer) error

	// All enumerates every persisted answer. Finite and restartable per
	// call.
	All(ctx context.Context) ([]question.Answer, error)

	// Close releases the underlying resources.
	Close() error
}
