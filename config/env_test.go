package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestEnvFromLookup_Defaults(t *testing.T) {
	env := EnvFromLookup(lookupFrom(nil))

	assert.Equal(t, "info", env.LogLevel)
	assert.Equal(t, "console", env.LogFormat)
	assert.Equal(t, "./public", env.PublicDir)
	assert.Equal(t, DefaultZoomBaseURL, env.ZoomBaseURL)
	assert.Equal(t, DefaultGeminiBaseURL, env.GeminiBaseURL)
	assert.Equal(t, DefaultTelegramBaseURL, env.TelegramBaseURL)
	assert.Equal(t, "gemini", env.ProcessorBackend)
	assert.Equal(t, "telegram", env.DeliveryBackend)
	assert.False(t, env.DeliveryShortCircuitAuth)
}

func TestEnvFromLookup_Overrides(t *testing.T) {
	env := EnvFromLookup(lookupFrom(map[string]string{
		"LOG_LEVEL":                   "DEBUG",
		"ZOOM_BASE_URL":               "http://zoom.local/",
		"PROCESSOR_BACKEND":           "OpenAI",
		"DELIVERY_BACKEND":            "twilio",
		"DELIVERY_SHORT_CIRCUIT_AUTH": "true",
		"TWILIO_FROM_NUMBER":          "+15550100",
		"GEMINI_BASE_URL":             "   ",
	}))

	assert.Equal(t, "debug", env.LogLevel)
	assert.Equal(t, "http://zoom.local", env.ZoomBaseURL)
	assert.Equal(t, DefaultGeminiBaseURL, env.GeminiBaseURL)
	assert.Equal(t, "openai", env.ProcessorBackend)
	assert.Equal(t, "twilio", env.DeliveryBackend)
	assert.True(t, env.DeliveryShortCircuitAuth)
	assert.Equal(t, "+15550100", env.TwilioFromNumber)
}

func TestEnv_LoggerLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, Env{LogLevel: "warn", LogFormat: "json"}.Logger().GetLevel())
	assert.Equal(t, zerolog.InfoLevel, Env{LogLevel: "bogus"}.Logger().GetLevel())
}
