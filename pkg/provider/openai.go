package provider

import (
	"context"
	"errors"
	"os"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

/*
OpenAIProvider is a provider for the OpenAI API.
*/
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

type OpenAIProviderOption func(*OpenAIProvider)

func NewOpenAIProvider(options ...OpenAIProviderOption) *OpenAIProvider {
	prvdr := &OpenAIProvider{model: string(openai.ChatModelGPT4oMini)}

	for _, option := range options {
		option(prvdr)
	}

	return prvdr
}

func (prvdr *OpenAIProvider) Complete(ctx context.Context, request Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(prvdr.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(request.System),
			openai.UserMessage(request.Prompt),
		},
		Temperature: openai.Float(request.Temperature),
		MaxTokens:   openai.Int(request.MaxTokens),
	}

	if request.Schema != nil {
		params.ResponseFormat = prvdr.applySchema(request.Schema)
	}

	completion, err := prvdr.client.Chat.Completions.New(ctx, params)

	if err != nil {
		return "", err
	}

	if len(completion.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}

	return completion.Choices[0].Message.Content, nil
}

func (prvdr *OpenAIProvider) applySchema(schema map[string]any) openai.ChatCompletionNewParamsResponseFormatUnion {
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:        "task_extraction",
				Description: openai.String("Fields extracted from a task creation request"),
				Schema:      schema,
				Strict:      openai.Bool(true),
			},
		},
	}
}

func WithOpenAIClient() OpenAIProviderOption {
	return func(prvdr *OpenAIProvider) {
		client := openai.NewClient(
			option.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
		)

		prvdr.client = &client
	}
}

func WithOpenAIModel(model string) OpenAIProviderOption {
	return func(prvdr *OpenAIProvider) {
		if model != "" {
			prvdr.model = model
		}
	}
}
