package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/recovery-bot/internal/services"
)

// AdminHandler exposes read-only views of the bot's records.
type AdminHandler struct {
	orders   *services.OrderLogger
	sessions *services.SessionManager
	consent  *services.ConsentLedger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(orders *services.OrderLogger, sessions *services.SessionManager, consent *services.ConsentLedger) *AdminHandler {
	return &AdminHandler{orders: orders, sessions: sessions, consent: consent}
}

// GetOrders lists every re-submitted order, oldest first
func (h *AdminHandler) GetOrders(c *fiber.Ctx) error {
	orders, err := h.orders.Orders(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load orders")
	}
	return c.JSON(fiber.Map{
		"count":  len(orders),
		"orders": orders,
	})
}

// GetSessions lists conversations still waiting for an answer
func (h *AdminHandler) GetSessions(c *fiber.Ctx) error {
	ctx := c.UserContext()
	active := h.sessions.GetActiveSessions(ctx)
	sessions := make([]fiber.Map, 0, len(active))
	for _, s := range active {
		sessions = append(sessions, fiber.Map{
			"contact":   s.ContactID,
			"step":      s.Step,
			"data":      s.Data,
			"startedAt": s.StartedAt,
		})
	}
	return c.JSON(fiber.Map{
		"stats":    h.sessions.GetSessionStats(ctx),
		"sessions": sessions,
	})
}

// GetConsent counts stored broadcast preferences
func (h *AdminHandler) GetConsent(c *fiber.Ctx) error {
	summary, err := h.consent.Summary(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load consent")
	}
	return c.JSON(fiber.Map{"consent": summary})
}
