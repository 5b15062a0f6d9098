package handlers

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
)

// Evolution API event names for new messages. The casing depends on the
// Evolution version.
const (
	eventMessagesUpsert       = "messages.upsert"
	eventMessagesUpsertLegacy = "MESSAGES_UPSERT"
)

// MessageProcessor handles one inbound text.
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, from, text string) error
}

// WebhookHandler receives WhatsApp messages and hands them to the rules
// engine after the gateway has been acknowledged.
type WebhookHandler struct {
	processor MessageProcessor
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// NewWebhookHandler creates a webhook handler
func NewWebhookHandler(processor MessageProcessor, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		logger:    logger.With("component", "webhook"),
	}
}

// EvolutionWebhookPayload is the subset of an Evolution API event we read.
type EvolutionWebhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Key struct {
			RemoteJID string `json:"remoteJid"`
			FromMe    bool   `json:"fromMe"`
		} `json:"key"`
		Message *struct {
			Conversation        string `json:"conversation"`
			ExtendedTextMessage *struct {
				Text string `json:"text"`
			} `json:"extendedTextMessage"`
		} `json:"message"`
	} `json:"data"`
}

// Text returns the message body, plain or extended.
func (p *EvolutionWebhookPayload) Text() string {
	m := p.Data.Message
	if m == nil {
		return ""
	}
	if m.Conversation != "" {
		return m.Conversation
	}
	if m.ExtendedTextMessage != nil {
		return m.ExtendedTextMessage.Text
	}
	return ""
}

// TwilioWebhookPayload represents incoming WhatsApp message from Twilio
type TwilioWebhookPayload struct {
	MessageSid string `form:"MessageSid"`
	From       string `form:"From"` // WhatsApp number (whatsapp:+5511999999999)
	To         string `form:"To"`
	Body       string `form:"Body"`
}

// For testing without a gateway
type TestMessagePayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// HandleEvolution acknowledges every request, then processes text messages
// from customers in the background. Bad payloads never produce an error status.
func (h *WebhookHandler) HandleEvolution(c *fiber.Ctx) error {
	var payload EvolutionWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		h.logger.Debug("ignoring unreadable webhook payload", "error", err)
		return ack(c)
	}

	if payload.Event != eventMessagesUpsert && payload.Event != eventMessagesUpsertLegacy {
		return ack(c)
	}
	if payload.Data.Key.FromMe {
		return ack(c)
	}
	from, text := payload.Data.Key.RemoteJID, payload.Text()
	if from == "" || text == "" {
		return ack(c)
	}

	h.dispatch(c.UserContext(), strings.Clone(from), strings.Clone(text))
	return ack(c)
}

// HandleTwilio processes Twilio's form-encoded message callbacks.
func (h *WebhookHandler) HandleTwilio(c *fiber.Ctx) error {
	var payload TwilioWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		h.logger.Debug("ignoring unreadable twilio payload", "error", err)
		return c.SendStatus(fiber.StatusOK)
	}

	// status callbacks carry no body
	if payload.From != "" && payload.Body != "" {
		h.dispatch(c.UserContext(), strings.Clone(payload.From), strings.Clone(payload.Body))
	}
	return c.SendStatus(fiber.StatusOK)
}

// HandleTestMessage processes a message synchronously (development only).
func (h *WebhookHandler) HandleTestMessage(c *fiber.Ctx) error {
	var payload TestMessagePayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if payload.From == "" || payload.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "from and message are required",
		})
	}

	if err := h.processor.ProcessMessage(c.UserContext(), payload.From, payload.Message); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// Wait blocks until messages dispatched so far have been processed.
func (h *WebhookHandler) Wait() {
	h.wg.Wait()
}

func (h *WebhookHandler) dispatch(ctx context.Context, from, text string) {
	ctx = context.WithoutCancel(ctx)
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				h.logger.Error("message processing panicked", "from", from, "panic", r)
			}
		}()
		if err := h.processor.ProcessMessage(ctx, from, text); err != nil {
			h.logger.Error("process message", "from", from, "error", err)
		}
	}()
}

func ack(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}
