package routes

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/recovery-bot/internal/config"
	"github.com/Ananth-NQI/recovery-bot/internal/handlers"
	"github.com/Ananth-NQI/recovery-bot/internal/middleware"
)

// Handlers groups everything the route table points at.
type Handlers struct {
	Health  *handlers.HealthHandler
	Webhook *handlers.WebhookHandler
	Admin   *handlers.AdminHandler
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, cfg *config.Config, h Handlers, logger *slog.Logger) {
	app.Get("/", h.Health.Info)
	app.Get("/health", h.Health.Check)

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")
	webhooks.Post("/", h.Webhook.HandleEvolution)

	// Twilio signs its callbacks; ngrok and local tests break the signed URL
	if cfg.IsDevelopment() || cfg.DisableWebhookValidation {
		logger.Warn("twilio webhook validation disabled")
		webhooks.Post("/twilio", h.Webhook.HandleTwilio)
	} else {
		webhooks.Post("/twilio", middleware.ValidateTwilioSignature(cfg.Twilio.AuthToken, logger), h.Webhook.HandleTwilio)
	}

	// ========== TEST ROUTES (Development Only) ==========
	if cfg.IsDevelopment() {
		app.Post("/test/message", h.Webhook.HandleTestMessage)
	}

	// ========== ADMIN ROUTES ==========
	// the views expose customer numbers and addresses
	if cfg.AdminToken == "" && !cfg.IsDevelopment() {
		logger.Warn("admin routes disabled, ADMIN_TOKEN is not set")
		return
	}
	admin := app.Group("/admin", middleware.RequireAdminToken(cfg.AdminToken))
	admin.Get("/orders", h.Admin.GetOrders)
	admin.Get("/sessions", h.Admin.GetSessions)
	admin.Get("/consent", h.Admin.GetConsent)
}
