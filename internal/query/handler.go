package query

import (
	"context"

	"robora/internal/question"
)

// Handler answers a single question with a value conforming to the
// question's response schema. Implementations classify failures with the
// Transient/Validation/Fatal wrappers; the caller never retries a question
// through the handler itself.
type Handler interface {
	Answer(ctx context.Context, q question.Question) (*question.Answer, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, q question.Question) (*question.Answer, error)

// Answer implements Handler.
func (f HandlerFunc) Answer(ctx context.Context, q question.Question) (*question.Answer, error) {
	return f(ctx, q)
}
