package storage

import (
	"context"

	"github.com/Ananth-NQI/recovery-bot/internal/models"
)

// Record set names, used as row keys by the database backend.
const (
	SetAuthorizedSenders = "authorized_senders"
	SetContacts          = "contacts"
	SetConsent           = "consent"
	SetSessions          = "sessions"
	SetOrders            = "orders"
)

// Store persists the bot's record sets. Every call moves a whole set:
// callers load a snapshot, change it and save it back. Backends do not
// serialize those cycles, so two writers interleaving load and save lose
// one of the updates.
type Store interface {
	// Read-only sets, edited by operators outside the bot.
	LoadAuthorizedSenders(ctx context.Context) (models.AuthorizedSenders, error)
	LoadContacts(ctx context.Context) ([]models.Contact, error)

	LoadConsent(ctx context.Context) (map[string]models.ConsentStatus, error)
	SaveConsent(ctx context.Context, consent map[string]models.ConsentStatus) error

	LoadSessions(ctx context.Context) (map[string]models.Session, error)
	SaveSessions(ctx context.Context, sessions map[string]models.Session) error

	LoadOrders(ctx context.Context) ([]models.Order, error)
	SaveOrders(ctx context.Context, orders []models.Order) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
