package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicBackend generates reports with the Anthropic Messages API.
type AnthropicBackend struct {
	client    *anthropic.Client
	model     anthropic.Model
	modelName string
	maxTokens int64
}

// NewAnthropicBackend creates a backend authenticated with apiKey. Extra options are passed to the client.
func NewAnthropicBackend(apiKey, modelName string, maxTokens int64, opts ...option.RequestOption) *AnthropicBackend {
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &AnthropicBackend{
		client:    &client,
		model:     anthropic.Model(modelName),
		modelName: modelName,
		maxTokens: maxTokens,
	}
}

func (b *AnthropicBackend) Name() string { return "anthropic/" + b.modelName }

func (b *AnthropicBackend) Complete(ctx context.Context, messages []Message) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     b.model,
		MaxTokens: b.maxTokens,
	}
	for _, m := range messages {
		switch m.Role {
		case "system":
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		case "assistant":
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	resp, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}
	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("no response from anthropic")
	}
	return out.String(), nil
}
