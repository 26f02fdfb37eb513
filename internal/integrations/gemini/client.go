package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"casatorpe/internal/domain"
)

const requestTimeout = 15 * time.Second

type generateFunc func(ctx context.Context, model *genai.GenerativeModel, parts ...genai.Part) (*genai.GenerateContentResponse, error)

// Client sends single-shot prompts to a Gemini model.
type Client struct {
	client   *genai.Client
	model    string
	newModel func(name string) *genai.GenerativeModel
	generate generateFunc
}

func New(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini: api key must not be empty")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("gemini: model must not be empty")
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Client{
		client:   client,
		model:    model,
		newModel: client.GenerativeModel,
		generate: generateContent,
	}, nil
}

// Generate runs one GenerateContent call with the system instruction set on
// the model and returns the concatenated text of the first candidate.
func (c *Client) Generate(ctx context.Context, in domain.GenerateRequest) (string, error) {
	model := c.newModel(c.model)
	configureModel(model, in)

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	resp, err := c.generate(ctx, model, genai.Text(in.Prompt))
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	return extractText(resp), nil
}

func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func generateContent(ctx context.Context, model *genai.GenerativeModel, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	return model.GenerateContent(ctx, parts...)
}

func configureModel(model *genai.GenerativeModel, in domain.GenerateRequest) {
	model.SetTemperature(in.Temperature)
	if in.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(in.SystemInstruction)},
		}
	}
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}
