package llm

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = openai.GPT4oMini

// OpenAIClient processes transcripts through an OpenAI-compatible chat
// completion API. The stored prompt becomes the system message.
type OpenAIClient struct {
	BaseURL string
	Timeout time.Duration

	newClient func(apiKey string) chatCompleter
}

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

func NewOpenAIClient(baseURL string) *OpenAIClient {
	c := &OpenAIClient{BaseURL: baseURL, Timeout: RequestTimeout}
	c.newClient = func(apiKey string) chatCompleter {
		cfg := openai.DefaultConfig(apiKey)
		if c.BaseURL != "" {
			cfg.BaseURL = c.BaseURL
		}
		return openai.NewClientWithConfig(cfg)
	}
	return c
}

func (c *OpenAIClient) Process(ctx context.Context, r Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req := chatRequest(r)
	resp, err := c.newClient(r.APIKey).CreateChatCompletion(ctx, req)
	if err != nil {
		return "", errors.Wrap(err, "openai chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", ErrProcessingResultMissing
	}
	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	if result == "" {
		return "", ErrProcessingResultMissing
	}
	return result, nil
}

// chatRequest maps the stored settings object onto a chat completion
// request. Unknown keys are ignored.
func chatRequest(r Request) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model: defaultOpenAIModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: r.Prompt},
			{Role: openai.ChatMessageRoleUser, Content: r.Text},
		},
	}
	if model, ok := r.Settings["model"].(string); ok && model != "" {
		req.Model = model
	}
	if temp, ok := r.Settings["temperature"].(float64); ok {
		req.Temperature = float32(temp)
	}
	if maxTokens, ok := r.Settings["max_tokens"].(float64); ok && maxTokens > 0 {
		req.MaxTokens = int(maxTokens)
	}
	return req
}
