package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

var (
	ErrTranscriptionNotFound     = errors.New("Zoom meeting transcription not found (404).")
	ErrTranscriptionUnauthorized = errors.New("Unauthorized access to Zoom API (401). Please check your API key.")
	ErrTranscriptionMissing      = errors.New("Transcription text not found in response.")
)

// TransportError wraps a network fault talking to the transcription API.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "zoom transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

type transcriptionResponse struct {
	Transcription *string `json:"transcription"`
}

// ZoomClient fetches meeting transcriptions. No timeout is applied beyond
// whatever the caller's context carries.
type ZoomClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewZoomClient(baseURL string, httpClient *http.Client) *ZoomClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &ZoomClient{BaseURL: baseURL, HTTPClient: httpClient}
}

// FetchTranscript returns the transcription text for meetingID.
func (c *ZoomClient) FetchTranscript(ctx context.Context, apiKey, meetingID string) (string, error) {
	endpoint := fmt.Sprintf("%s/meetings/%s/transcription", c.BaseURL, url.PathEscape(meetingID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", errors.Wrap(err, "build zoom request")
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return "", ErrTranscriptionNotFound
	case http.StatusUnauthorized:
		return "", ErrTranscriptionUnauthorized
	case http.StatusOK:
	default:
		return "", errors.Wrapf(ErrTranscriptionMissing, "unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	var out transcriptionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", errors.Wrap(ErrTranscriptionMissing, "decode zoom response")
	}
	if out.Transcription == nil || *out.Transcription == "" {
		return "", ErrTranscriptionMissing
	}
	return *out.Transcription, nil
}
