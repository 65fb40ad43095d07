package llmservice

import (
	"context"
	"fmt"
	"strings"

	"docqa/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// Client is the one chat-model surface the rest of the code talks to.
// Implementations absorb provider-specific response shapes and always hand
// back plain text.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type langchainClient struct {
	llm llms.Model
}

// NewClient builds a chat client for the configured provider.
func NewClient(llmConfig *config.LLMConfig) (Client, error) {
	var llm llms.Model
	var err error
	switch llmConfig.Provider {
	case "", "ollama":
		llm, err = ollama.New(
			ollama.WithServerURL(llmConfig.BaseURL),
			ollama.WithModel(llmConfig.Model),
		)
	case "openai":
		llm, err = openai.New(
			openai.WithBaseURL(llmConfig.BaseURL),
			openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
			openai.WithModel(llmConfig.Model),
		)
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", llmConfig.Provider)
	}
	if err != nil {
		return nil, err
	}
	return &langchainClient{llm: llm}, nil
}

// Generate calls the model and normalizes whatever shape comes back into a
// single string.
func (c *langchainClient) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	res, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		log.Error().Err(err).Msg("Error generating content")
		return "", err
	}
	return normalizeResponse(res), nil
}

func normalizeResponse(res *llms.ContentResponse) string {
	if res == nil {
		return ""
	}
	if len(res.Choices) > 0 && res.Choices[0] != nil {
		return res.Choices[0].Content
	}
	return fmt.Sprintf("%v", res)
}
