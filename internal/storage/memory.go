package storage

import (
	"context"
	"sync"

	"github.com/Ananth-NQI/recovery-bot/internal/models"
)

// MemoryStore holds all record sets in memory. Loads return copies, so it
// keeps the same snapshot semantics as the persistent backends.
type MemoryStore struct {
	mu       sync.RWMutex
	senders  models.AuthorizedSenders
	contacts []models.Contact
	consent  map[string]models.ConsentStatus
	sessions map[string]models.Session
	orders   []models.Order
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		senders:  models.AuthorizedSenders{},
		consent:  make(map[string]models.ConsentStatus),
		sessions: make(map[string]models.Session),
	}
}

// SetAuthorizedSenders replaces the role table. Used for seeding.
func (m *MemoryStore) SetAuthorizedSenders(senders models.AuthorizedSenders) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.senders = models.AuthorizedSenders{}
	for role, numbers := range senders {
		m.senders[role] = append([]string(nil), numbers...)
	}
}

// SetContacts replaces the contact directory. Used for seeding.
func (m *MemoryStore) SetContacts(contacts []models.Contact) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.contacts = append([]models.Contact(nil), contacts...)
}

func (m *MemoryStore) LoadAuthorizedSenders(_ context.Context) (models.AuthorizedSenders, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := models.AuthorizedSenders{}
	for role, numbers := range m.senders {
		out[role] = append([]string(nil), numbers...)
	}
	return out, nil
}

func (m *MemoryStore) LoadContacts(_ context.Context) ([]models.Contact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]models.Contact(nil), m.contacts...), nil
}

func (m *MemoryStore) LoadConsent(_ context.Context) (map[string]models.ConsentStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]models.ConsentStatus, len(m.consent))
	for k, v := range m.consent {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryStore) SaveConsent(_ context.Context, consent map[string]models.ConsentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.consent = make(map[string]models.ConsentStatus, len(consent))
	for k, v := range consent {
		m.consent[k] = v
	}
	return nil
}

func (m *MemoryStore) LoadSessions(_ context.Context) (map[string]models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]models.Session, len(m.sessions))
	for k, v := range m.sessions {
		v.ContactID = k
		out[k] = v
	}
	return out, nil
}

func (m *MemoryStore) SaveSessions(_ context.Context, sessions map[string]models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions = make(map[string]models.Session, len(sessions))
	for k, v := range sessions {
		m.sessions[k] = v
	}
	return nil
}

func (m *MemoryStore) LoadOrders(_ context.Context) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]models.Order{}, m.orders...), nil
}

func (m *MemoryStore) SaveOrders(_ context.Context, orders []models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.orders = append([]models.Order(nil), orders...)
	return nil
}

func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
