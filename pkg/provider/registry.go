package provider

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/taskagent/pkg/errors"
)

/*
New builds the completer for a vendor name as used in the config file.
*/
func New(name, model string) (Completer, error) {
	switch name {
	case "openai":
		return NewOpenAIProvider(WithOpenAIClient(), WithOpenAIModel(model)), nil
	case "anthropic":
		return NewAnthropicProvider(WithAnthropicClient(), WithAnthropicModel(model)), nil
	case "google", "gemini":
		prvdr := NewGoogleProvider(WithGoogleClient(), WithGoogleModel(model))

		if prvdr.client == nil {
			return nil, fmt.Errorf("google provider: %w", errors.ErrPortUnavailable)
		}

		return prvdr, nil
	case "ollama":
		prvdr := NewOllamaProvider(WithOllamaClient(), WithOllamaModel(model))

		if prvdr.client == nil {
			return nil, fmt.Errorf("ollama provider: %w", errors.ErrPortUnavailable)
		}

		return prvdr, nil
	case "deepseek":
		return NewDeepseekProvider(WithDeepseekClient(), WithDeepseekModel(model)), nil
	case "cohere":
		return NewCohereProvider(WithCohereClient(), WithCohereModel(model)), nil
	}

	return nil, fmt.Errorf("unknown provider %q", name)
}

/*
Chain tries each completer in order and returns the first answer.  It lets
a deployment fall back to a second vendor, or a local model, when the first
one is down.
*/
type Chain struct {
	completers []Completer
	names      []string
}

func NewChain() *Chain {
	return &Chain{}
}

// Add appends a completer; name is only used for logging.
func (chain *Chain) Add(name string, completer Completer) *Chain {
	chain.completers = append(chain.completers, completer)
	chain.names = append(chain.names, name)
	return chain
}

func (chain *Chain) Len() int {
	return len(chain.completers)
}

func (chain *Chain) Complete(ctx context.Context, request Request) (string, error) {
	if len(chain.completers) == 0 {
		return "", errors.ErrPortUnavailable
	}

	failures := []any{}

	for idx, completer := range chain.completers {
		out, err := completer.Complete(ctx, request)

		if err == nil {
			return out, nil
		}

		log.Warn("provider failed", "provider", chain.names[idx], "error", err)
		failures = append(failures, err)

		if ctx.Err() != nil {
			break
		}
	}

	return "", errors.NewError(failures...)
}
