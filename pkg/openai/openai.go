package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Client is the chat-completion surface the generators depend on.
// This interface is used for mocking the OpenAI client in unit tests.
type Client interface {
	ChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (string, error)
}

type client struct {
	openaiClient *openai.Client
}

// New wraps the sashabaranov client.
func New(openaiClient *openai.Client) Client {
	return &client{openaiClient: openaiClient}
}

func (c *client) ChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (string, error) {
	result, err := c.openaiClient.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", errors.New("no choices found in response")
	}
	return result.Choices[0].Message.Content, nil
}

// ExtractJSON returns the contents of a fenced ```json block, or the
// trimmed text unchanged when the model answered without fences.
func ExtractJSON(text string) string {
	if start := strings.Index(text, "```json"); start != -1 {
		rest := text[start+len("```json"):]
		if end := strings.Index(rest, "```"); end != -1 {
			return strings.TrimSpace(rest[:end])
		}
	}
	if start := strings.Index(text, "```"); start != -1 {
		rest := text[start+len("```"):]
		if end := strings.Index(rest, "```"); end != -1 {
			return strings.TrimSpace(rest[:end])
		}
	}
	return strings.TrimSpace(text)
}
