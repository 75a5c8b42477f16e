package provider

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"google.golang.org/genai"
)

/*
GoogleProvider is a provider for the Gemini API.
*/
type GoogleProvider struct {
	client *genai.Client
	model  string
}

type GoogleProviderOption func(*GoogleProvider)

func NewGoogleProvider(options ...GoogleProviderOption) *GoogleProvider {
	prvdr := &GoogleProvider{model: "gemini-2.0-flash"}

	for _, option := range options {
		option(prvdr)
	}

	return prvdr
}

func (prvdr *GoogleProvider) Complete(ctx context.Context, request Request) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(request.System, genai.RoleUser),
		Temperature:       genai.Ptr(float32(request.Temperature)),
		MaxOutputTokens:   int32(request.MaxTokens),
	}

	if request.Schema != nil {
		config.ResponseMIMEType = "application/json"
	}

	response, err := prvdr.client.Models.GenerateContent(ctx, prvdr.model, genai.Text(request.Prompt), config)

	if err != nil {
		return "", err
	}

	return response.Text(), nil
}

func WithGoogleClient() GoogleProviderOption {
	return func(prvdr *GoogleProvider) {
		client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  os.Getenv("GOOGLE_API_KEY"),
			Backend: genai.BackendGeminiAPI,
		})

		if err != nil {
			log.Error("failed to create google genai client", "error", err)
			return
		}

		prvdr.client = client
	}
}

func WithGoogleModel(model string) GoogleProviderOption {
	return func(prvdr *GoogleProvider) {
		if model != "" {
			prvdr.model = model
		}
	}
}
