package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiService implements TextGenerator on the Google Gemini API.
type GeminiService struct {
	client    *genai.Client
	modelName string
	logger    *slog.Logger
}

var _ TextGenerator = (*GeminiService)(nil)

// NewGeminiService creates a Gemini text generator.
func NewGeminiService(ctx context.Context, apiKey string, modelName string, logger *slog.Logger) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return &GeminiService{
		client:    client,
		modelName: modelName,
		logger:    logger,
	}, nil
}

// Close releases the underlying client.
func (g *GeminiService) Close() error {
	return g.client.Close()
}

// Generate sends the instruction as a single user turn and returns the
// concatenated text parts of the first candidate.
func (g *GeminiService) Generate(ctx context.Context, instruction string, modelHint string) (string, error) {
	name := g.modelName
	if modelHint != "" {
		name = modelHint
	}
	model := g.client.GenerativeModel(name)

	resp, err := model.GenerateContent(ctx, genai.Text(instruction))
	if err != nil {
		return "", externalErr("gemini", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", externalErr("gemini", fmt.Errorf("no content returned"))
	}

	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	if out == "" {
		return "", externalErr("gemini", fmt.Errorf("response contained no text parts"))
	}
	return out, nil
}
