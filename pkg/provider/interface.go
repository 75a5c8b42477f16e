package provider

import (
	"context"
)

/*
Request is a single-shot completion: one system instruction, one user
prompt, no tools and no streaming.  Schema, when set, asks vendors that
support it for structured JSON output.
*/
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int64
	Schema      map[string]any
}

/*
Completer is the contract every vendor adapter satisfies.  Implementations
return the raw text of the first choice.
*/
type Completer interface {
	Complete(ctx context.Context, request Request) (string, error)
}

// CompleterFunc adapts a plain function, which is what the tests use.
type CompleterFunc func(ctx context.Context, request Request) (string, error)

func (fn CompleterFunc) Complete(ctx context.Context, request Request) (string, error) {
	return fn(ctx, request)
}
