package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/recovery-bot/internal/config"
	"github.com/Ananth-NQI/recovery-bot/internal/utils"
)

// EvolutionService sends WhatsApp messages through an Evolution API instance.
type EvolutionService struct {
	host     string
	apiKey   string
	instance string
	timeout  time.Duration
	logger   *slog.Logger
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// NewEvolutionService creates the Evolution API client.
func NewEvolutionService(cfg config.EvolutionConfig, logger *slog.Logger) (*EvolutionService, error) {
	if cfg.Host == "" || cfg.APIKey == "" || cfg.Instance == "" {
		return nil, errors.New("missing Evolution API settings")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &EvolutionService{
		host:     cfg.Host,
		apiKey:   cfg.APIKey,
		instance: cfg.Instance,
		timeout:  timeout,
		logger:   logger.With("component", "evolution"),
	}, nil
}

// SendText posts one text message. Only 200 and 201 count as delivered to the gateway.
func (e *EvolutionService) SendText(ctx context.Context, to, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/message/sendText/%s", e.host, e.instance)
	agent := fiber.Post(url).
		Set("apikey", e.apiKey).
		Timeout(e.timeout).
		JSON(sendTextRequest{Number: utils.NormalizeNumber(to), Text: text})

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("evolution send: %w", errors.Join(errs...))
	}
	if code != fiber.StatusOK && code != fiber.StatusCreated {
		return fmt.Errorf("evolution send: status %d: %s", code, truncate(string(body), 200))
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

var _ MessageSender = (*EvolutionService)(nil)
