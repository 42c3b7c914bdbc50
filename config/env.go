package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// ListenAddr is fixed; the port has no environment override.
const ListenAddr = ":3000"

const (
	DefaultZoomBaseURL     = "https://api.zoom.us/v2"
	DefaultGeminiBaseURL   = "https://api.gemini.com"
	DefaultTelegramBaseURL = "https://api.telegram.org"
)

// Env is the process-level configuration read at startup.
type Env struct {
	LogLevel  string
	LogFormat string
	PublicDir string

	ZoomBaseURL     string
	GeminiBaseURL   string
	TelegramBaseURL string

	ProcessorBackend string
	OpenAIBaseURL    string

	DeliveryBackend          string
	DeliveryShortCircuitAuth bool
	TwilioAccountSID         string
	TwilioAuthToken          string
	TwilioFromNumber         string
}

// LoadEnv reads .env when present and then the process environment.
// The returned bool reports whether a .env file was loaded.
func LoadEnv(files ...string) (Env, bool) {
	loaded := godotenv.Load(files...) == nil
	return EnvFromLookup(os.LookupEnv), loaded
}

// EnvFromLookup builds an Env from an arbitrary lookup function.
func EnvFromLookup(lookup func(string) (string, bool)) Env {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}
	shortCircuit, _ := strconv.ParseBool(get("DELIVERY_SHORT_CIRCUIT_AUTH", "false"))

	return Env{
		LogLevel:                 strings.ToLower(get("LOG_LEVEL", "info")),
		LogFormat:                strings.ToLower(get("LOG_FORMAT", "console")),
		PublicDir:                get("PUBLIC_DIR", "./public"),
		ZoomBaseURL:              strings.TrimRight(get("ZOOM_BASE_URL", DefaultZoomBaseURL), "/"),
		GeminiBaseURL:            strings.TrimRight(get("GEMINI_BASE_URL", DefaultGeminiBaseURL), "/"),
		TelegramBaseURL:          strings.TrimRight(get("TELEGRAM_BASE_URL", DefaultTelegramBaseURL), "/"),
		ProcessorBackend:         strings.ToLower(get("PROCESSOR_BACKEND", "gemini")),
		OpenAIBaseURL:            get("OPENAI_BASE_URL", ""),
		DeliveryBackend:          strings.ToLower(get("DELIVERY_BACKEND", "telegram")),
		DeliveryShortCircuitAuth: shortCircuit,
		TwilioAccountSID:         get("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:          get("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber:         get("TWILIO_FROM_NUMBER", ""),
	}
}

// Logger builds the process logger described by e.
func (e Env) Logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(e.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if e.LogFormat == "json" {
		logger = zerolog.New(os.Stdout)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"})
	}
	return logger.Level(level).With().Timestamp().Str("service", "meeting-relay").Logger()
}
