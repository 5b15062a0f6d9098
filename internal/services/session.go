package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Ananth-NQI/recovery-bot/internal/models"
	"github.com/Ananth-NQI/recovery-bot/internal/storage"
)

// SessionManager persists order re-capture conversations, one per contact.
// Sessions have no expiry: an abandoned conversation stays until it is
// completed or removed by an operator.
type SessionManager struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewSessionManager creates a new session manager
func NewSessionManager(store storage.Store, logger *slog.Logger) *SessionManager {
	return &SessionManager{
		store:  store,
		logger: logger.With("component", "session"),
		now:    time.Now,
	}
}

// GetSession returns the contact's session. A contact without one, or a
// store that cannot be read, yields a session in StepNone.
func (sm *SessionManager) GetSession(ctx context.Context, contactID string) models.Session {
	sessions, err := sm.store.LoadSessions(ctx)
	if err != nil {
		sm.logger.Error("load sessions", "error", err)
		return models.Session{ContactID: contactID}
	}
	session, ok := sessions[contactID]
	if !ok {
		return models.Session{ContactID: contactID}
	}
	session.ContactID = contactID
	return session
}

// StartSession opens a fresh conversation waiting for the item.
func (sm *SessionManager) StartSession(ctx context.Context, contactID string) error {
	sessions := sm.load(ctx)
	sessions[contactID] = models.Session{
		ContactID: contactID,
		Step:      models.StepAwaitingItem,
		StartedAt: sm.now().UTC(),
	}
	if err := sm.store.SaveSessions(ctx, sessions); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	sm.logger.Info("session started", "contact", contactID)
	return nil
}

// UpdateSession moves an existing session to step and applies fn to its
// draft. Missing sessions are left alone.
func (sm *SessionManager) UpdateSession(ctx context.Context, contactID string, step models.SessionStep, fn func(*models.OrderDraft)) error {
	sessions := sm.load(ctx)
	session, ok := sessions[contactID]
	if !ok {
		return nil
	}
	session.Step = step
	if fn != nil {
		fn(&session.Data)
	}
	sessions[contactID] = session
	if err := sm.store.SaveSessions(ctx, sessions); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// CompleteSession removes the contact's session.
func (sm *SessionManager) CompleteSession(ctx context.Context, contactID string) error {
	sessions := sm.load(ctx)
	if _, ok := sessions[contactID]; !ok {
		return nil
	}
	delete(sessions, contactID)
	if err := sm.store.SaveSessions(ctx, sessions); err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	sm.logger.Info("session completed", "contact", contactID)
	return nil
}

// GetActiveSessions returns all open sessions, oldest first (for monitoring)
func (sm *SessionManager) GetActiveSessions(ctx context.Context) []models.Session {
	sessions := sm.load(ctx)
	active := make([]models.Session, 0, len(sessions))
	for id, s := range sessions {
		s.ContactID = id
		active = append(active, s)
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].StartedAt.Equal(active[j].StartedAt) {
			return active[i].ContactID < active[j].ContactID
		}
		return active[i].StartedAt.Before(active[j].StartedAt)
	})
	return active
}

// SessionStats provides session statistics
type SessionStats struct {
	ActiveSessions int                        `json:"active_sessions"`
	SessionsByStep map[models.SessionStep]int `json:"sessions_by_step"`
	OldestStarted  *time.Time                 `json:"oldest_started_at,omitempty"`
}

// GetSessionStats returns current session statistics
func (sm *SessionManager) GetSessionStats(ctx context.Context) SessionStats {
	active := sm.GetActiveSessions(ctx)
	stats := SessionStats{
		ActiveSessions: len(active),
		SessionsByStep: make(map[models.SessionStep]int),
	}
	for _, s := range active {
		stats.SessionsByStep[s.Step]++
	}
	if len(active) > 0 {
		oldest := active[0].StartedAt
		stats.OldestStarted = &oldest
	}
	return stats
}

func (sm *SessionManager) load(ctx context.Context) map[string]models.Session {
	sessions, err := sm.store.LoadSessions(ctx)
	if err != nil {
		sm.logger.Error("load sessions", "error", err)
		return map[string]models.Session{}
	}
	if sessions == nil {
		return map[string]models.Session{}
	}
	return sessions
}
