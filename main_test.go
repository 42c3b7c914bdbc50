package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrsingh-rishi/meeting-relay/config"
	"github.com/mrsingh-rishi/meeting-relay/llm"
	"github.com/mrsingh-rishi/meeting-relay/output"
)

func TestNewProcessor(t *testing.T) {
	p, err := newProcessor(config.Env{ProcessorBackend: "gemini", GeminiBaseURL: "http://gemini"})
	require.NoError(t, err)
	assert.IsType(t, &llm.GeminiClient{}, p)

	p, err = newProcessor(config.Env{ProcessorBackend: "openai"})
	require.NoError(t, err)
	assert.IsType(t, &llm.OpenAIClient{}, p)

	_, err = newProcessor(config.Env{ProcessorBackend: "other"})
	assert.ErrorContains(t, err, "PROCESSOR_BACKEND")
}

func TestNewSender(t *testing.T) {
	s, err := newSender(config.Env{DeliveryBackend: "telegram", TelegramBaseURL: "http://tg"})
	require.NoError(t, err)
	assert.IsType(t, &output.TelegramSender{}, s)

	s, err = newSender(config.Env{DeliveryBackend: "twilio", TwilioAccountSID: "AC1", TwilioFromNumber: "+1"})
	require.NoError(t, err)
	assert.IsType(t, &output.TwilioSender{}, s)

	_, err = newSender(config.Env{DeliveryBackend: "twilio"})
	assert.Error(t, err)

	_, err = newSender(config.Env{DeliveryBackend: "pigeon"})
	assert.ErrorContains(t, err, "DELIVERY_BACKEND")
}
