package workers

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/mrsingh-rishi/meeting-relay/config"
	"github.com/mrsingh-rishi/meeting-relay/llm"
	"github.com/mrsingh-rishi/meeting-relay/metrics"
	"github.com/mrsingh-rishi/meeting-relay/output"
)

// Broadcast texts. Subscribers cannot tell failure causes apart.
const (
	ProcessingFailedMessage = "An error occurred while processing the request. Please try again later."
	DeliveryFailedMessage   = "An error occurred while sending a message. Please try again later."
)

// Stage names used in logs, metrics and RunResult.
const (
	StageTranscription = "transcription"
	StageProcessing    = "processing"
	StageDelivery      = "delivery"
)

var ErrNotConfigured = errors.New("Settings have not been configured.")

type Fetcher interface {
	FetchTranscript(ctx context.Context, apiKey, meetingID string) (string, error)
}

type Publisher interface {
	Publish(msg string)
}

// RunResult describes how one run ended. FailedStage is empty on success.
type RunResult struct {
	RunID       string
	FailedStage string
	Attempts    int
	Err         error
}

// Pipeline runs Fetch -> Process -> Deliver for one meeting at a time per
// call. Each run reads a single settings snapshot taken when it starts.
type Pipeline struct {
	Store     *config.Store
	Fetcher   Fetcher
	Processor llm.Processor
	Sender    output.Sender
	Policy    output.Policy
	Notifier  Publisher
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger

	wg sync.WaitGroup
}

// Start launches a run in the background and returns its id.
func (p *Pipeline) Start(meetingID string) (string, error) {
	settings, ok := p.Store.Snapshot()
	if !ok {
		return "", ErrNotConfigured
	}
	runID := uuid.NewString()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(context.Background(), runID, meetingID, settings)
	}()
	return runID, nil
}

// Run executes a run synchronously.
func (p *Pipeline) Run(ctx context.Context, meetingID string) RunResult {
	settings, ok := p.Store.Snapshot()
	if !ok {
		return RunResult{Err: ErrNotConfigured}
	}
	return p.run(ctx, uuid.NewString(), meetingID, settings)
}

// Wait blocks until every run started with Start has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) run(ctx context.Context, runID, meetingID string, s config.Settings) RunResult {
	logger := p.Logger.With().Str("run_id", runID).Str("meeting_id", meetingID).Logger()
	if p.Metrics != nil {
		p.Metrics.PipelineRuns.Inc()
	}
	logger.Info().Msg("pipeline run started")

	transcript, err := p.Fetcher.FetchTranscript(ctx, s.ZoomAPIKey, meetingID)
	if err != nil {
		// Transcription failures are logged only; viewers are not told.
		logger.Error().Err(err).Msg("Error fetching Zoom transcription")
		return p.fail(runID, StageTranscription, 0, err)
	}

	result, err := p.Processor.Process(ctx, llm.Request{
		APIKey:   s.GeminiAPIKey,
		Text:     transcript,
		Prompt:   s.Prompt,
		Settings: s.GeminiSettings,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Error processing with Gemini")
		p.Notifier.Publish(ProcessingFailedMessage)
		return p.fail(runID, StageProcessing, 0, err)
	}

	msg := output.Message{BotToken: s.BotToken, ChatID: s.ChatID, Text: result}
	attempts, err := output.Deliver(ctx, p.Sender, msg, p.Policy, func(attempt int, err error) {
		outcome := "success"
		if err != nil {
			outcome = "failure"
			logger.Error().Err(err).Int("attempt", attempt).Msg("Error sending message")
		}
		if p.Metrics != nil {
			p.Metrics.DeliveryAttempts.WithLabelValues(outcome).Inc()
		}
	})
	if err != nil {
		logger.Error().Err(err).Int("attempts", attempts).Msg("message delivery exhausted")
		p.Notifier.Publish(DeliveryFailedMessage)
		return p.fail(runID, StageDelivery, attempts, err)
	}

	logger.Info().Int("attempts", attempts).Msg("pipeline run delivered")
	return RunResult{RunID: runID, Attempts: attempts}
}

func (p *Pipeline) fail(runID, stage string, attempts int, err error) RunResult {
	if p.Metrics != nil {
		p.Metrics.StageFailures.WithLabelValues(stage).Inc()
	}
	return RunResult{RunID: runID, FailedStage: stage, Attempts: attempts, Err: err}
}
