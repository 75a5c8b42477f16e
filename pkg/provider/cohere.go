package provider

import (
	"context"
	"os"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

/*
CohereProvider is a provider for the Cohere chat API.  The system prompt
travels as the preamble.
*/
type CohereProvider struct {
	client *cohereclient.Client
	model  string
}

type CohereProviderOption func(*CohereProvider)

func NewCohereProvider(options ...CohereProviderOption) *CohereProvider {
	prvdr := &CohereProvider{model: "command-r"}

	for _, option := range options {
		option(prvdr)
	}

	return prvdr
}

func (prvdr *CohereProvider) Complete(ctx context.Context, request Request) (string, error) {
	model := prvdr.model
	preamble := request.System
	temperature := request.Temperature
	maxTokens := int(request.MaxTokens)

	response, err := prvdr.client.Chat(ctx, &cohere.ChatRequest{
		Model:       &model,
		Message:     request.Prompt,
		Preamble:    &preamble,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})

	if err != nil {
		return "", err
	}

	return response.GetText(), nil
}

func WithCohereClient() CohereProviderOption {
	return func(prvdr *CohereProvider) {
		prvdr.client = cohereclient.NewClient(
			cohereclient.WithToken(os.Getenv("COHERE_API_KEY")),
		)
	}
}

func WithCohereModel(model string) CohereProviderOption {
	return func(prvdr *CohereProvider) {
		if model != "" {
			prvdr.model = model
		}
	}
}
