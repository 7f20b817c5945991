// Package gemini generates trivia text with Google's Gemini models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chat-trivia-service/internal/domain"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-2.0-flash"

// Generator implements app.Generator on top of a Gemini client.
type Generator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGenerator connects to Gemini. It returns domain.ErrGeneratorDisabled when
// apiKey is empty.
func NewGenerator(ctx context.Context, apiKey, model string, timeout time.Duration) (*Generator, error) {
	if apiKey == "" {
		return nil, domain.ErrGeneratorDisabled
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Generator{client: client, model: model, timeout: timeout}, nil
}

// GenerateText sends prompt to the model and returns the concatenated text parts.
func (g *Generator) GenerateText(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	model := g.client.GenerativeModel(g.model)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return textFromResponse(resp)
}

func (g *Generator) Close() error {
	return g.client.Close()
}

var errEmptyResponse = errors.New("gemini returned no text")

func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errEmptyResponse
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return "", errEmptyResponse
	}
	var b strings.Builder
	for _, part := range content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", errEmptyResponse
	}
	return b.String(), nil
}
