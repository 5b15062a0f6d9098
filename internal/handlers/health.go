package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/recovery-bot/internal/services"
)

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	Version  string
	Gateway  string
	Mode     string
	store    Pinger
	sessions *services.SessionManager
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version, gateway, mode string, store Pinger, sessions *services.SessionManager) *HealthHandler {
	return &HealthHandler{
		Version:  version,
		Gateway:  gateway,
		Mode:     mode,
		store:    store,
		sessions: sessions,
	}
}

// Info returns the service banner
func (h *HealthHandler) Info(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service":    "Recovery Bot",
		"version":    h.Version,
		"gateway":    h.Gateway,
		"order_mode": h.Mode,
		"endpoints": fiber.Map{
			"health":  "/health",
			"webhook": "/webhook",
			"twilio":  "/webhook/twilio",
			"admin":   "/admin",
		},
	})
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status, code := "healthy", fiber.StatusOK
	storeStatus := "connected"
	if err := h.store.Ping(c.UserContext()); err != nil {
		status, code = "unhealthy", fiber.StatusServiceUnavailable
		storeStatus = "error: " + err.Error()
	}

	return c.Status(code).JSON(fiber.Map{
		"status":          status,
		"version":         h.Version,
		"store":           storeStatus,
		"active_sessions": len(h.sessions.GetActiveSessions(c.UserContext())),
	})
}
