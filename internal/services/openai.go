package services

import (
	"context"
	"errors"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

var errNoChoices = errors.New("no choices in response")

const DefaultOpenAIModel = openai.GPT4oMini

// OpenAIService implements TextGenerator on the OpenAI chat API.
type OpenAIService struct {
	client    *openai.Client
	modelName string
	logger    *slog.Logger
}

var _ TextGenerator = (*OpenAIService)(nil)

// NewOpenAIService creates an OpenAI text generator.
func NewOpenAIService(apiKey string, modelName string, logger *slog.Logger) *OpenAIService {
	if modelName == "" {
		modelName = DefaultOpenAIModel
	}
	return &OpenAIService{
		client:    openai.NewClient(apiKey),
		modelName: modelName,
		logger:    logger,
	}
}

func (o *OpenAIService) Generate(ctx context.Context, instruction string, modelHint string) (string, error) {
	model := o.modelName
	if modelHint != "" {
		model = modelHint
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: instruction},
		},
	})
	if err != nil {
		return "", externalErr("openai", err)
	}
	if len(resp.Choices) == 0 {
		return "", externalErr("openai", errNoChoices)
	}
	return resp.Choices[0].Message.Content, nil
}
