package provider

import (
	"context"
	"errors"
	"os"

	deepseek "github.com/cohesion-org/deepseek-go"
)

/*
DeepseekProvider is a provider for the DeepSeek API.
*/
type DeepseekProvider struct {
	client *deepseek.Client
	model  string
}

type DeepseekProviderOption func(*DeepseekProvider)

func NewDeepseekProvider(options ...DeepseekProviderOption) *DeepseekProvider {
	prvdr := &DeepseekProvider{model: deepseek.DeepSeekChat}

	for _, option := range options {
		option(prvdr)
	}

	return prvdr
}

func (prvdr *DeepseekProvider) Complete(ctx context.Context, request Request) (string, error) {
	response, err := prvdr.client.CreateChatCompletion(ctx, &deepseek.ChatCompletionRequest{
		Model: prvdr.model,
		Messages: []deepseek.ChatCompletionMessage{
			{Role: deepseek.ChatMessageRoleSystem, Content: request.System},
			{Role: deepseek.ChatMessageRoleUser, Content: request.Prompt},
		},
		Temperature: float32(request.Temperature),
		MaxTokens:   int(request.MaxTokens),
		JSONMode:    request.Schema != nil,
	})

	if err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", errors.New("deepseek: empty choices")
	}

	return response.Choices[0].Message.Content, nil
}

func WithDeepseekClient() DeepseekProviderOption {
	return func(prvdr *DeepseekProvider) {
		prvdr.client = deepseek.NewClient(os.Getenv("DEEPSEEK_API_KEY"))
	}
}

func WithDeepseekModel(model string) DeepseekProviderOption {
	return func(prvdr *DeepseekProvider) {
		if model != "" {
			prvdr.model = model
		}
	}
}
