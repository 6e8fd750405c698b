// Package genai adapts Google's Gemini API to the same chat-completion
// interface the OpenAI client exposes, so the caption and box-proposal
// generators can run against either backend unchanged.
package genai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
)

type GenaiModel string

const (
	GenaiModelFlash GenaiModel = "gemini-1.5-flash"
	GenaiModelPro   GenaiModel = "gemini-1.5-pro"
)

type client struct {
	genaiClient *genai.Client
}

// New wraps a Gemini client. The returned value satisfies the
// pkg/openai.Client interface.
func New(genaiClient *genai.Client) *client {
	return &client{genaiClient: genaiClient}
}

func (c *client) ChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (string, error) {
	if err := validateModel(request.Model); err != nil {
		return "", err
	}
	if len(request.Messages) == 0 {
		return "", errors.New("no messages in request")
	}

	genaiModel := c.genaiClient.GenerativeModel(request.Model)
	genaiModel.SetTemperature(request.Temperature)
	if request.MaxTokens > 0 {
		genaiModel.SetMaxOutputTokens(int32(request.MaxTokens))
	}

	chatSession := genaiModel.StartChat()
	chatSession.History = []*genai.Content{}
	for _, message := range request.Messages[:len(request.Messages)-1] {
		if message.Role == openai.ChatMessageRoleSystem {
			// The genai library has no system slot at this version; prepend
			// system text as a user turn.
			chatSession.History = append(chatSession.History, &genai.Content{
				Parts: []genai.Part{genai.Text("System: " + message.Content)},
				Role:  "user",
			})
			continue
		}
		parts, err := toGenaiParts(message)
		if err != nil {
			return "", err
		}
		chatSession.History = append(chatSession.History, &genai.Content{
			Parts: parts,
			Role:  toGenaiRole(message.Role),
		})
	}

	requestMessage := request.Messages[len(request.Messages)-1]
	parts, err := toGenaiParts(requestMessage)
	if err != nil {
		return "", err
	}

	resp, err := chatSession.SendMessage(ctx, parts...)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response from model")
	}
	return fmt.Sprintf("%s", resp.Candidates[0].Content.Parts[0]), nil
}

func toGenaiParts(message openai.ChatCompletionMessage) ([]genai.Part, error) {
	var parts []genai.Part
	if message.MultiContent != nil {
		for _, content := range message.MultiContent {
			if content.Type == openai.ChatMessagePartTypeImageURL {
				decodedImage, mimeType, err := decodeImageURL(content.ImageURL.URL)
				if err != nil {
					return nil, err
				}
				parts = append(parts, genai.Blob{
					MIMEType: mimeType,
					Data:     decodedImage,
				})
			} else {
				parts = append(parts, genai.Text(content.Text))
			}
		}
	} else if message.Content != "" {
		parts = append(parts, genai.Text(message.Content))
	}
	return parts, nil
}

func toGenaiRole(role string) string {
	switch role {
	case openai.ChatMessageRoleAssistant:
		return "model"
	default:
		return "user"
	}
}

func decodeImageURL(dataURI string) ([]byte, string, error) {
	if !strings.HasPrefix(dataURI, "data:") {
		return nil, "", errors.New("invalid data URI format")
	}

	parts := strings.SplitN(dataURI, ",", 2)
	if len(parts) != 2 {
		return nil, "", errors.New("invalid data URI format")
	}

	mimeType := strings.TrimSuffix(strings.TrimPrefix(parts[0], "data:"), ";base64")

	decodedData, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, "", err
	}

	return decodedData, mimeType, nil
}

func validateModel(model string) error {
	switch model {
	case string(GenaiModelFlash), string(GenaiModelPro):
		return nil
	default:
		return errors.New("invalid model")
	}
}
