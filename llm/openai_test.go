package llm

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	got  openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
	err  error
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.got = req
	return f.resp, f.err
}

func newTestOpenAIClient(f *fakeCompleter) (*OpenAIClient, *string) {
	var key string
	c := NewOpenAIClient("")
	c.newClient = func(apiKey string) chatCompleter {
		key = apiKey
		return f
	}
	return c, &key
}

func TestOpenAIClient_Process(t *testing.T) {
	fake := &fakeCompleter{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: " done \n"}}},
	}}
	client, key := newTestOpenAIClient(fake)

	out, err := client.Process(context.Background(), Request{
		APIKey:   "sk-test",
		Text:     "transcript",
		Prompt:   "summarise",
		Settings: map[string]any{"model": "gpt-4o", "temperature": 0.3, "max_tokens": float64(256), "ignored": true},
	})

	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, "sk-test", *key)
	assert.Equal(t, "gpt-4o", fake.got.Model)
	assert.InDelta(t, 0.3, fake.got.Temperature, 0.0001)
	assert.Equal(t, 256, fake.got.MaxTokens)
	require.Len(t, fake.got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, fake.got.Messages[0].Role)
	assert.Equal(t, "summarise", fake.got.Messages[0].Content)
	assert.Equal(t, "transcript", fake.got.Messages[1].Content)
}

func TestOpenAIClient_DefaultModel(t *testing.T) {
	req := chatRequest(Request{Settings: map[string]any{}})
	assert.Equal(t, openai.GPT4oMini, req.Model)
}

func TestOpenAIClient_EmptyResult(t *testing.T) {
	client, _ := newTestOpenAIClient(&fakeCompleter{})

	_, err := client.Process(context.Background(), Request{})
	assert.True(t, errors.Is(err, ErrProcessingResultMissing))
}

func TestOpenAIClient_APIError(t *testing.T) {
	client, _ := newTestOpenAIClient(&fakeCompleter{err: errors.New("rate limited")})

	_, err := client.Process(context.Background(), Request{})
	assert.ErrorContains(t, err, "rate limited")
}
