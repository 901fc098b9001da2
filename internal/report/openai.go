package report

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultOllamaURL is the OpenAI-compatible endpoint of a local Ollama server.
const DefaultOllamaURL = "http://localhost:11434/v1/"

// OpenAIBackend talks to any OpenAI-compatible chat completions endpoint,
// including a local Ollama server.
type OpenAIBackend struct {
	client    *openai.Client
	model     openai.ChatModel
	modelName string
}

// NewOpenAIBackend creates a backend for baseURL. An empty apiKey is fine for Ollama.
func NewOpenAIBackend(baseURL, apiKey, modelName string) *OpenAIBackend {
	if apiKey == "" {
		apiKey = "ollama"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(1)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAIBackend{
		client:    &client,
		model:     openai.ChatModel(modelName),
		modelName: modelName,
	}
}

func (b *OpenAIBackend) Name() string { return "openai/" + b.modelName }

func (b *OpenAIBackend) Complete(ctx context.Context, messages []Message) (string, error) {
	params := openai.ChatCompletionNewParams{Model: b.model}
	for _, m := range messages {
		switch m.Role {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
