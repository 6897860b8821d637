package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Generator turns a prompt into text. The review writer only needs this.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.0-flash"

// ErrBlocked is returned when Gemini withholds the answer.
var ErrBlocked = errors.New("response blocked by safety filters")

const coachInstruction = `You write short weekly review notes for one university student.
Answer in Markdown bullet points, in the language of the data you are given.
Never invent numbers that are not in the prompt.`

// Client generates review insights with Gemini.
type Client struct {
	genaiClient *genai.Client
	model       *genai.GenerativeModel
}

var _ Generator = (*Client)(nil)

func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty (set GEMINI_API_KEY)")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if modelName == "" {
		modelName = DefaultModel
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.4)
	model.SetMaxOutputTokens(600)
	model.SystemInstruction = genai.NewUserContent(genai.Text(coachInstruction))

	return &Client{genaiClient: client, model: model}, nil
}

func (c *Client) Close() error {
	return c.genaiClient.Close()
}

// GenerateText returns the text parts of the first candidate, trimmed.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", ErrBlocked
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}

	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return "", ErrBlocked
	}
	if cand.Content == nil {
		return "", fmt.Errorf("candidate has no content (finish reason %s)", cand.FinishReason)
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("empty response")
	}
	return text, nil
}
