package provider

import (
	"context"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

/*
AnthropicProvider is a provider for the Anthropic API.  Anthropic has no
response format switch; the extraction prompt already asks for bare JSON.
*/
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

type AnthropicProviderOption func(*AnthropicProvider)

func NewAnthropicProvider(options ...AnthropicProviderOption) *AnthropicProvider {
	prvdr := &AnthropicProvider{model: string(anthropic.ModelClaude3_5HaikuLatest)}

	for _, option := range options {
		option(prvdr)
	}

	return prvdr
}

func (prvdr *AnthropicProvider) Complete(ctx context.Context, request Request) (string, error) {
	message, err := prvdr.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(prvdr.model),
		MaxTokens:   request.MaxTokens,
		Temperature: anthropic.Float(request.Temperature),
		System:      []anthropic.TextBlockParam{{Text: request.System}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(request.Prompt)),
		},
	})

	if err != nil {
		return "", err
	}

	builder := strings.Builder{}

	for _, block := range message.Content {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}

	return builder.String(), nil
}

func WithAnthropicClient() AnthropicProviderOption {
	return func(prvdr *AnthropicProvider) {
		client := anthropic.NewClient(
			option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
		)

		prvdr.client = &client
	}
}

func WithAnthropicModel(model string) AnthropicProviderOption {
	return func(prvdr *AnthropicProvider) {
		if model != "" {
			prvdr.model = model
		}
	}
}
