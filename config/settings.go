package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidSettings is returned when geminiSettings is not a JSON object.
var ErrInvalidSettings = errors.New("Invalid Gemini settings provided. Please enter valid JSON.")

// InvalidFieldError reports a missing, non-string or blank field.
type InvalidFieldError struct {
	Field string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("Invalid %s provided.", e.Field)
}

// Payload is the raw body of a save request. Fields stay undecoded so a
// missing value can be told apart from a value of the wrong type.
type Payload struct {
	ZoomAPIKey     json.RawMessage
	GeminiAPIKey   json.RawMessage
	Prompt         json.RawMessage
	GeminiSettings json.RawMessage
	BotToken       json.RawMessage
	ChatID         json.RawMessage
}

// DecodePayload reads a JSON save request. Keys are matched exactly, so
// "ZOOMAPIKEY" does not stand in for "zoomApiKey". An empty body or a JSON
// value that is not an object decodes to an empty Payload and fails later
// validation on its first field.
func DecodePayload(body []byte) (Payload, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Payload{}, nil
	}
	if !json.Valid(body) {
		return Payload{}, errors.New("malformed JSON body")
	}
	if body[0] != '{' {
		return Payload{}, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Payload{}, errors.Wrap(err, "decode body")
	}
	return Payload{
		ZoomAPIKey:     fields["zoomApiKey"],
		GeminiAPIKey:   fields["geminiApiKey"],
		Prompt:         fields["prompt"],
		GeminiSettings: fields["geminiSettings"],
		BotToken:       fields["botToken"],
		ChatID:         fields["chatID"],
	}, nil
}

// Settings is one validated configuration. Values are treated as immutable
// once handed to the Store.
type Settings struct {
	ZoomAPIKey     string
	GeminiAPIKey   string
	Prompt         string
	GeminiSettings map[string]any
	BotToken       string
	ChatID         string
}

// Validate checks every field of p and returns the resulting Settings.
// The first failing field aborts validation.
func Validate(p Payload) (Settings, error) {
	var s Settings
	fields := []struct {
		raw   json.RawMessage
		label string
		dst   *string
	}{
		{p.ZoomAPIKey, "Zoom API Key", &s.ZoomAPIKey},
		{p.GeminiAPIKey, "Gemini API Key", &s.GeminiAPIKey},
		{p.Prompt, "Gemini prompt", &s.Prompt},
		{p.BotToken, "Telegram Bot Token", &s.BotToken},
		{p.ChatID, "Telegram Chat ID", &s.ChatID},
	}
	for _, f := range fields {
		v, ok := stringValue(f.raw)
		if !ok || strings.TrimSpace(v) == "" {
			return Settings{}, &InvalidFieldError{Field: f.label}
		}
		*f.dst = v
	}

	settings, err := parseGeminiSettings(p.GeminiSettings)
	if err != nil {
		return Settings{}, err
	}
	s.GeminiSettings = settings
	return s, nil
}

func stringValue(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	return v, true
}

// parseGeminiSettings accepts a JSON string holding an object, or an inline
// object as posted by older form scripts.
func parseGeminiSettings(raw json.RawMessage) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if s, ok := stringValue(raw); ok {
		raw = bytes.TrimSpace([]byte(s))
	}
	if len(raw) == 0 || raw[0] != '{' {
		return nil, ErrInvalidSettings
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, ErrInvalidSettings
	}
	return obj, nil
}

// Clone returns a copy of s whose settings map is not shared.
func (s Settings) Clone() Settings {
	out := s
	if s.GeminiSettings != nil {
		out.GeminiSettings = make(map[string]any, len(s.GeminiSettings))
		for k, v := range s.GeminiSettings {
			out.GeminiSettings[k] = v
		}
	}
	return out
}
