// Package boxgen proposes text placement boxes for a meme template by
// showing the template image to a vision-capable chat model. Proposals
// are clamped to sane sizes, forced in-bounds, and de-overlapped before
// anyone trusts them.
package boxgen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sashabaranov/go-openai"

	"github.com/coinmeme-project/coinmeme/pkg/layout"
	"github.com/coinmeme-project/coinmeme/pkg/memedb"
	coinOpenai "github.com/coinmeme-project/coinmeme/pkg/openai"
	"github.com/coinmeme-project/coinmeme/pkg/utils"
)

// Proposal size limits, fractions of the image frame. Wider or taller
// proposals are clipped to these before the bounds check.
const (
	minBoxWidth  = 0.2
	maxBoxWidth  = 0.8
	minBoxHeight = 0.05
	maxBoxHeight = 0.2
)

type Proposer struct {
	client coinOpenai.Client
	model  string

	// Used to delay the next request when the external API fails.
	backoffDuration time.Duration
}

// DefaultModel is the vision-capable model used when none is configured.
const DefaultModel = "gpt-4o"

func New(client coinOpenai.Client, model string, backoffDuration time.Duration) *Proposer {
	if model == "" {
		model = DefaultModel
	}
	return &Proposer{client: client, model: model, backoffDuration: backoffDuration}
}

// Propose returns one box per schema field for the given template image.
// Fields the model invents are dropped; fields it omits stay absent (the
// renderer skips them). The returned set is already resolved and
// in-bounds.
func (p *Proposer) Propose(ctx context.Context, imageBytes []byte, templateName string, schema map[string]memedb.FieldSpec, imgWidth, imgHeight int) (map[string]layout.Box, error) {
	prompt := buildPrompt(templateName, schema, imgWidth, imgHeight)

	response, err := backoff.RetryWithData(func() (string, error) {
		return p.client.ChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{Type: openai.ChatMessagePartTypeText, Text: prompt},
						{
							Type: openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{
								URL:    "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(imageBytes),
								Detail: openai.ImageURLDetailHigh,
							},
						},
					},
				},
			},
			Temperature: 0.1,
			MaxTokens:   1000,
		})
	}, backoff.WithMaxRetries(backoff.NewConstantBackOff(p.backoffDuration), 4))
	if err != nil {
		return nil, fmt.Errorf("failed to propose boxes for %s: %w", templateName, err)
	}

	var proposed map[string]layout.Box
	if err := json.Unmarshal([]byte(coinOpenai.ExtractJSON(response)), &proposed); err != nil {
		return nil, fmt.Errorf("failed to parse box proposal for %s: %w", templateName, err)
	}

	cleaned := make(map[string]layout.Box, len(proposed))
	for field, box := range proposed {
		if _, ok := schema[field]; !ok {
			continue
		}
		cleaned[field] = sanitize(box)
	}
	return layout.Resolve(cleaned), nil
}

// sanitize clips the proposal to the allowed size range, forces the box
// in-bounds, and rounds everything to 3 decimals, the precision the
// template db stores. Size clipping runs first, so the clamp always has a
// feasible center range to move into.
func sanitize(box layout.Box) layout.Box {
	box.Width = math.Max(minBoxWidth, math.Min(maxBoxWidth, box.Width))
	box.Height = math.Max(minBoxHeight, math.Min(maxBoxHeight, box.Height))
	box = box.Clamp()

	return layout.Box{
		X:      round3(box.X),
		Y:      round3(box.Y),
		Width:  round3(box.Width),
		Height: round3(box.Height),
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func buildPrompt(templateName string, schema map[string]memedb.FieldSpec, imgWidth, imgHeight int) string {
	var schemaDesc strings.Builder
	for _, field := range utils.SortedKeys(schema) {
		fmt.Fprintf(&schemaDesc, "- %s: %s\n", field, schema[field].Description)
	}

	return fmt.Sprintf(`Analyze this meme template image for the %q meme format.

This meme has the following text fields that need to be placed:
%s
CRITICAL REQUIREMENTS:
1. Look at where text ACTUALLY appears in existing meme examples of this format
2. Text boxes must be placed in EMPTY/NEUTRAL areas with good contrast
3. Never place text over faces, important objects, or busy backgrounds
4. Text boxes should be CONSERVATIVE in size - better too small than too large
5. Ensure proper spacing between multiple text areas

The image dimensions are %dx%d pixels.

Return ONLY a valid JSON object with this exact structure:
{
  "field_name_1": {
    "x": 0.5,
    "y": 0.2,
    "width": 0.6,
    "height": 0.1
  }
}

STRICT COORDINATE RULES:
- x, y are the CENTER coordinates normalized to 0-1 range
- width, height are normalized to 0-1 range
- x must be between width/2 and (1 - width/2)
- y must be between height/2 and (1 - height/2)
- width should be between 0.2 and 0.8 (reasonable text area)
- height should be between 0.05 and 0.2 (text height)
- Ensure NO overlap between boxes
- Leave at least 0.1 spacing between box edges

Provide coordinates for: %s

REMEMBER: Look at the actual image to see where text typically goes in this meme format!`,
		templateName, schemaDesc.String(), imgWidth, imgHeight, strings.Join(utils.SortedKeys(schema), ", "))
}
