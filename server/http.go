package server

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mrsingh-rishi/meeting-relay/config"
	"github.com/mrsingh-rishi/meeting-relay/metrics"
	"github.com/mrsingh-rishi/meeting-relay/notify"
	"github.com/mrsingh-rishi/meeting-relay/workers"
)

const savedMessage = "Settings saved successfully."

// Runner starts a pipeline run for a meeting.
type Runner interface {
	Start(meetingID string) (string, error)
}

// Deps are the collaborators the HTTP surface is wired to.
type Deps struct {
	Store     *config.Store
	Hub       *notify.Hub
	Runner    Runner
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
	PublicDir string
}

// New builds the fiber app serving the configuration form, the save
// endpoint, the notification websocket and the run trigger.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(requestLogger(d.Logger))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendFile(filepath.Join(d.PublicDir, "index.html"))
	})
	app.Static("/", d.PublicDir)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/set-config", d.setConfig)
	app.Post("/transcriptions/:meetingId", d.triggerRun)

	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	// Middleware to require WebSocket upgrade on /ws
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(func(ws *websocket.Conn) {
		defer ws.Close()
		d.Hub.Serve(ws)
	}))

	return app
}

func (d Deps) setConfig(c *fiber.Ctx) error {
	payload, err := parsePayload(c)
	if err != nil {
		d.countSave("invalid_body")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body."})
	}

	settings, err := config.Validate(payload)
	if err != nil {
		d.countSave("rejected")
		d.Logger.Warn().Err(err).Msg("configuration rejected")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	d.Store.Save(settings)
	d.countSave("saved")
	d.Logger.Info().Msg("configuration saved")
	return c.JSON(fiber.Map{"success": savedMessage})
}

func (d Deps) triggerRun(c *fiber.Ctx) error {
	meetingID := strings.TrimSpace(c.Params("meetingId"))
	if meetingID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "meeting id is required"})
	}

	runID, err := d.Runner.Start(meetingID)
	if errors.Is(err, workers.ErrNotConfigured) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		d.Logger.Error().Err(err).Str("meeting_id", meetingID).Msg("failed to start pipeline run")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to start run"})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"runId": runID})
}

func (d Deps) countSave(outcome string) {
	if d.Metrics != nil {
		d.Metrics.ConfigSaves.WithLabelValues(outcome).Inc()
	}
}

// parsePayload accepts JSON bodies and url-encoded form posts.
func parsePayload(c *fiber.Ctx) (config.Payload, error) {
	var p config.Payload
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEApplicationForm) {
		p.ZoomAPIKey = formValue(c, "zoomApiKey")
		p.GeminiAPIKey = formValue(c, "geminiApiKey")
		p.Prompt = formValue(c, "prompt")
		p.GeminiSettings = formValue(c, "geminiSettings")
		p.BotToken = formValue(c, "botToken")
		p.ChatID = formValue(c, "chatID")
		return p, nil
	}
	return config.DecodePayload(c.Body())
}

func formValue(c *fiber.Ctx, key string) json.RawMessage {
	raw := c.Request().PostArgs().Peek(key)
	if raw == nil {
		return nil
	}
	encoded, _ := json.Marshal(string(raw))
	return encoded
}

func requestLogger(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Debug().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("took", time.Since(start)).
			Msg("request")
		return err
	}
}
