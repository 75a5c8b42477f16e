package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theapemachine/taskagent/pkg/chat"
	"github.com/theapemachine/taskagent/pkg/errors"
	"github.com/theapemachine/taskagent/pkg/prompts"
	"github.com/theapemachine/taskagent/pkg/types"
	"github.com/tidwall/gjson"
)

// Classifier asks the model for one intent label.  The label is validated by
// the cascade, not here.
type Classifier struct {
	completer Completer
}

func NewClassifier(completer Completer) *Classifier {
	return &Classifier{completer: completer}
}

func (classifier *Classifier) Classify(
	ctx context.Context, message string, recent []types.ConversationTurn,
) (string, error) {
	return classifier.completer.Complete(ctx, Request{
		System:      prompts.ClassifierSystem(),
		Prompt:      prompts.ClassifierUser(message, recent),
		Temperature: 0.1,
		MaxTokens:   20,
	})
}

var extractionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":    map[string]any{"type": "string"},
		"due_date": map[string]any{"type": []string{"string", "null"}},
		"priority": map[string]any{"type": "string", "enum": []string{"low", "medium", "high", "urgent"}},
	},
	"required":             []string{"title", "due_date", "priority"},
	"additionalProperties": false,
}

/*
Extractor pulls title, due date and priority out of a create request.
*/
type Extractor struct {
	completer Completer
}

func NewExtractor(completer Completer) *Extractor {
	return &Extractor{completer: completer}
}

func (extractor *Extractor) Extract(ctx context.Context, message string, now time.Time) (chat.Extraction, error) {
	raw, err := extractor.completer.Complete(ctx, Request{
		System:      prompts.ExtractorSystem(now),
		Prompt:      prompts.ExtractorUser(message),
		Temperature: 0.1,
		MaxTokens:   150,
		Schema:      extractionSchema,
	})

	if err != nil {
		return chat.Extraction{}, err
	}

	return parseExtraction(raw)
}

/*
parseExtraction reads the model's JSON, tolerating a surrounding markdown
fence.  A null or missing due date is reported as empty.
*/
func parseExtraction(raw string) (chat.Extraction, error) {
	body := stripFence(raw)

	if !gjson.Valid(body) {
		return chat.Extraction{}, fmt.Errorf("%w: extraction is not json: %q", errors.ErrInvalidPayload, clip(raw, 80))
	}

	parsed := gjson.Parse(body)
	title := strings.TrimSpace(parsed.Get("title").String())

	if title == "" {
		return chat.Extraction{}, fmt.Errorf("%w: extraction has no title", errors.ErrInvalidPayload)
	}

	extraction := chat.Extraction{
		Title:    title,
		Priority: parsed.Get("priority").String(),
	}

	if due := parsed.Get("due_date"); due.Exists() && due.Type == gjson.String {
		extraction.DueDate = due.String()
	}

	return extraction, nil
}

func stripFence(raw string) string {
	text := strings.TrimSpace(raw)

	if _, after, found := strings.Cut(text, "```json"); found {
		before, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(before)
	}

	if _, after, found := strings.Cut(text, "```"); found {
		before, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(before)
	}

	return text
}

// Answerer handles the free-form questions nothing else understood.
type Answerer struct {
	completer Completer
}

func NewAnswerer(completer Completer) *Answerer {
	return &Answerer{completer: completer}
}

func (answerer *Answerer) Answer(ctx context.Context, userPrompt, systemPrompt string) (string, error) {
	return answerer.completer.Complete(ctx, Request{
		System:      systemPrompt,
		Prompt:      userPrompt,
		Temperature: 0.4,
		MaxTokens:   800,
	})
}

func clip(s string, limit int) string {
	runes := []rune(s)

	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}
