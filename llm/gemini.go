package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

type geminiRequest struct {
	Text     string         `json:"text"`
	Prompt   string         `json:"prompt"`
	Settings map[string]any `json:"settings"`
}

type geminiResponse struct {
	Result *string `json:"result"`
}

// GeminiClient posts transcripts to the text-processing endpoint.
type GeminiClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

func NewGeminiClient(baseURL string, httpClient *http.Client) *GeminiClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &GeminiClient{BaseURL: baseURL, HTTPClient: httpClient, Timeout: RequestTimeout}
}

func (c *GeminiClient) Process(ctx context.Context, r Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	settings := r.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	body, err := json.Marshal(geminiRequest{Text: r.Text, Prompt: r.Prompt, Settings: settings})
	if err != nil {
		return "", errors.Wrap(err, "marshal gemini request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/process", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build gemini request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "gemini request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Errorf("gemini returned status %d", resp.StatusCode)
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(ErrProcessingResultMissing, "decode gemini response")
	}
	if out.Result == nil || *out.Result == "" {
		return "", ErrProcessingResultMissing
	}
	return *out.Result, nil
}
