package service

import (
	"context"
	"strings"

	"cardpilot/pkg/config"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const classifierSystemPrompt = "You are a product categorization assistant. " +
	"Respond with ONLY a single category name from the provided options for the given product description."

// OpenAIClassifier asks a chat-completion model for a single category
// name. Output is returned verbatim; resolving it against the known
// category set is the caller's job.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewOpenAIClassifier(cfg *config.OpenAIConfig, logger *zap.Logger) *OpenAIClassifier {
	return &OpenAIClassifier{
		client: openai.NewClient(cfg.APIKey),
		model:  cfg.Model,
		logger: logger,
	}
}

func (c *OpenAIClassifier) Classify(ctx context.Context, description string, categories []string) string {
	system := classifierSystemPrompt
	if len(categories) > 0 {
		system += "\n\nAvailable categories: " + strings.Join(categories, ", ")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.3,
		MaxTokens:   10,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: "Categorize this product: " + description},
		},
	})
	if err != nil {
		c.logger.Error("failed to classify description", zap.Error(err))
		return ""
	}
	if len(resp.Choices) == 0 {
		c.logger.Error("completion response contained no choices")
		return ""
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content)
}
