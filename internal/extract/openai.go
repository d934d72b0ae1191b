// Package extract turns free-form farmer messages into raw transaction
// records using an LLM with a forced function call. The output is a loose
// map; normalization decides what is usable.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

const defaultModel = openai.GPT4oMini

// Client extracts transaction fields from natural-language messages.
type Client struct {
	api   *openai.Client
	model string
}

func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		api:   openai.NewClient(apiKey),
		model: model,
	}, nil
}

// Extract sends the message through a forced tool call and returns the raw
// field map the model produced. No validation happens here.
func (c *Client) Extract(ctx context.Context, message string) (map[string]any, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		Tools: []openai.Tool{
			{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        extractFunctionName,
					Description: "Extrae los datos estructurados de una transacción agrícola.",
					Parameters:  json.RawMessage(extractSchema),
				},
			},
		},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: extractFunctionName},
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	calls := resp.Choices[0].Message.ToolCalls
	if len(calls) == 0 {
		return nil, fmt.Errorf("model did not call %s", extractFunctionName)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(calls[0].Function.Arguments), &raw); err != nil {
		return nil, fmt.Errorf("decode tool arguments: %w", err)
	}

	slog.DebugContext(ctx, "Extracted transaction fields",
		"model", c.model,
		"fields", len(raw))

	return raw, nil
}
