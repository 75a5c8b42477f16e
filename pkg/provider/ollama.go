package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/ollama/ollama/api"
)

/*
OllamaProvider is a provider for a local Ollama server.
*/
type OllamaProvider struct {
	client *api.Client
	model  string
}

type OllamaProviderOption func(*OllamaProvider)

func NewOllamaProvider(options ...OllamaProviderOption) *OllamaProvider {
	prvdr := &OllamaProvider{model: "llama3.2"}

	for _, option := range options {
		option(prvdr)
	}

	return prvdr
}

func (prvdr *OllamaProvider) Complete(ctx context.Context, request Request) (string, error) {
	stream := false

	req := &api.ChatRequest{
		Model: prvdr.model,
		Messages: []api.Message{
			{Role: "system", Content: request.System},
			{Role: "user", Content: request.Prompt},
		},
		Stream: &stream,
		Options: map[string]any{
			"temperature": request.Temperature,
			"num_predict": request.MaxTokens,
		},
	}

	if request.Schema != nil {
		format, err := json.Marshal(request.Schema)

		if err != nil {
			return "", err
		}

		req.Format = format
	}

	builder := strings.Builder{}

	err := prvdr.client.Chat(ctx, req, func(response api.ChatResponse) error {
		builder.WriteString(response.Message.Content)
		return nil
	})

	if err != nil {
		return "", err
	}

	return builder.String(), nil
}

func WithOllamaClient() OllamaProviderOption {
	return func(prvdr *OllamaProvider) {
		client, err := api.ClientFromEnvironment()

		if err != nil {
			log.Error("failed to create ollama client", "error", err)
			return
		}

		prvdr.client = client
	}
}

func WithOllamaModel(model string) OllamaProviderOption {
	return func(prvdr *OllamaProvider) {
		if model != "" {
			prvdr.model = model
		}
	}
}
