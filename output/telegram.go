package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// TelegramSender posts messages through the Bot API sendMessage method.
type TelegramSender struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewTelegramSender(baseURL string, httpClient *http.Client) *TelegramSender {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &TelegramSender{BaseURL: baseURL, HTTPClient: httpClient}
}

func (s *TelegramSender) Send(ctx context.Context, msg Message) error {
	payload := map[string]string{
		"chat_id": msg.ChatID,
		"text":    msg.Text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal telegram payload")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", s.BaseURL, msg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build telegram request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "telegram request")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &UnexpectedStatusError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}
	return nil
}
