// Package caption turns a trending topic and a meme template into one
// caption string per schema field, using a chat-completion backend.
package caption

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sashabaranov/go-openai"

	"github.com/coinmeme-project/coinmeme/pkg/memedb"
	coinOpenai "github.com/coinmeme-project/coinmeme/pkg/openai"
)

type Generator struct {
	client coinOpenai.Client
	model  string

	// Used to delay the next request when the external API fails.
	backoffDuration time.Duration
}

func New(client coinOpenai.Client, model string, backoffDuration time.Duration) *Generator {
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	return &Generator{client: client, model: model, backoffDuration: backoffDuration}
}

// Generate returns one caption per schema field. It never fails: an
// unusable model response degrades to placeholder text per field so the
// caller can always render something. Fields the model left out are
// simply absent from the result; the renderer skips them.
func (g *Generator) Generate(ctx context.Context, topic string, template memedb.Template) map[string]string {
	prompt, err := buildPrompt(topic, template)
	if err != nil {
		log.Printf("Failed to build caption prompt for %s: %v", template.Name, err)
		return placeholders(template, "Error generating text")
	}

	response, err := backoff.RetryWithData(func() (string, error) {
		return g.client.ChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are a creative meme generator. Generate funny, relevant text for meme templates.",
				},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: 0.8,
			MaxTokens:   500,
		})
	}, backoff.WithMaxRetries(backoff.NewConstantBackOff(g.backoffDuration), 4))
	if err != nil {
		log.Printf("Failed to generate captions for %s: %v", template.Name, err)
		return placeholders(template, "Error generating text")
	}

	captions, err := parseCaptions(response)
	if err != nil {
		log.Printf("Failed to parse caption response for %s: %v", template.Name, err)
		return placeholders(template, fmt.Sprintf("Generated text for %s", topic))
	}
	return captions
}

func buildPrompt(topic string, template memedb.Template) (string, error) {
	schemaJSON, err := json.MarshalIndent(template.Schema, "", "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Create a meme about %q using the %q template.

Template explanation: %s

Template schema: %s

Generate appropriate text for each field in the schema. Make it funny and relevant to the topic %q.
Return only a JSON object with the field names as keys and the generated text as values.`,
		topic, template.Name, template.Explanation, schemaJSON, topic), nil
}

// Non-string values in the model's JSON are stringified rather than
// rejected; the fitter only ever sees strings.
func parseCaptions(response string) (map[string]string, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(coinOpenai.ExtractJSON(response)), &raw); err != nil {
		return nil, err
	}

	captions := make(map[string]string, len(raw))
	for field, value := range raw {
		if text, ok := value.(string); ok {
			captions[field] = text
			continue
		}
		captions[field] = fmt.Sprintf("%v", value)
	}
	return captions, nil
}

func placeholders(template memedb.Template, text string) map[string]string {
	captions := make(map[string]string, len(template.Schema))
	for field := range template.Schema {
		captions[field] = text
	}
	return captions
}
