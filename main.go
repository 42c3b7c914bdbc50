package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/mrsingh-rishi/meeting-relay/config"
	"github.com/mrsingh-rishi/meeting-relay/llm"
	"github.com/mrsingh-rishi/meeting-relay/metrics"
	"github.com/mrsingh-rishi/meeting-relay/notify"
	"github.com/mrsingh-rishi/meeting-relay/output"
	"github.com/mrsingh-rishi/meeting-relay/server"
	"github.com/mrsingh-rishi/meeting-relay/stt"
	"github.com/mrsingh-rishi/meeting-relay/workers"
)

func main() {
	env, loaded := config.LoadEnv()
	logger := env.Logger()
	if !loaded {
		logger.Info().Msg("No .env file found, falling back to environment variables")
	}

	m := metrics.New()
	hub := notify.NewHub(logger)
	hub.OnCountChange = func(n int) { m.Subscribers.Set(float64(n)) }

	processor, err := newProcessor(env)
	if err != nil {
		logger.Fatal().Err(err).Msg("text processor setup failed")
	}
	sender, err := newSender(env)
	if err != nil {
		logger.Fatal().Err(err).Msg("delivery setup failed")
	}

	policy := output.DefaultPolicy()
	policy.ShortCircuitAuth = env.DeliveryShortCircuitAuth

	store := config.NewStore()
	pipeline := &workers.Pipeline{
		Store:     store,
		Fetcher:   stt.NewZoomClient(env.ZoomBaseURL, &http.Client{}),
		Processor: processor,
		Sender:    sender,
		Policy:    policy,
		Notifier:  hub,
		Metrics:   m,
		Logger:    logger,
	}

	app := server.New(server.Deps{
		Store:     store,
		Hub:       hub,
		Runner:    pipeline,
		Metrics:   m,
		Logger:    logger,
		PublicDir: env.PublicDir,
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info().Msg("shutting down")
		_ = app.Shutdown()
	}()

	logger.Info().Str("addr", config.ListenAddr).
		Str("processor", env.ProcessorBackend).
		Str("delivery", env.DeliveryBackend).
		Msg("Server is running on http://localhost:3000")
	if err := app.Listen(config.ListenAddr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
	pipeline.Wait()
}

func newProcessor(env config.Env) (llm.Processor, error) {
	switch env.ProcessorBackend {
	case "openai":
		return llm.NewOpenAIClient(env.OpenAIBaseURL), nil
	case "gemini":
		return llm.NewGeminiClient(env.GeminiBaseURL, &http.Client{}), nil
	default:
		return nil, errors.Errorf("unknown PROCESSOR_BACKEND %q", env.ProcessorBackend)
	}
}

func newSender(env config.Env) (output.Sender, error) {
	switch env.DeliveryBackend {
	case "twilio":
		s, err := output.NewTwilioSender(env.TwilioAccountSID, env.TwilioAuthToken, env.TwilioFromNumber)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "telegram":
		return output.NewTelegramSender(env.TelegramBaseURL, &http.Client{}), nil
	default:
		return nil, errors.Errorf("unknown DELIVERY_BACKEND %q", env.DeliveryBackend)
	}
}
