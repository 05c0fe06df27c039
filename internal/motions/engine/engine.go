package engine

import "context"

type Message struct {
	Role    string
	Content string
}

type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// Engine performs one chat completion and returns the raw reply text.
// Failures are *domain.Error values classified as config, auth, transport
// or empty-reply problems.
type Engine interface {
	Complete(ctx context.Context, model string, messages []Message, opts GenerateOptions) (string, error)
}

// Func adapts a function to Engine.
type Func func(ctx context.Context, model string, messages []Message, opts GenerateOptions) (string, error)

func (f Func) Complete(ctx context.Context, model string, messages []Message, opts GenerateOptions) (string, error) {
	return f(ctx, model, messages, opts)
}
