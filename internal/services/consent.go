package services

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/Ananth-NQI/recovery-bot/internal/models"
	"github.com/Ananth-NQI/recovery-bot/internal/storage"
	"github.com/Ananth-NQI/recovery-bot/internal/utils"
)

// ConsentLedger tracks broadcast preferences and admin roles.
type ConsentLedger struct {
	store  storage.Store
	logger *slog.Logger
}

// NewConsentLedger creates a ledger over the given store.
func NewConsentLedger(store storage.Store, logger *slog.Logger) *ConsentLedger {
	return &ConsentLedger{store: store, logger: logger.With("component", "consent")}
}

// GetConsent returns the stored preference, or unknown when none was recorded.
// A store failure reads as unknown.
func (l *ConsentLedger) GetConsent(ctx context.Context, contact string) models.ConsentStatus {
	consent, err := l.store.LoadConsent(ctx)
	if err != nil {
		l.logger.Error("load consent", "error", err)
		return models.ConsentUnknown
	}
	if status, ok := consent[utils.NormalizeNumber(contact)]; ok {
		return status
	}
	return models.ConsentUnknown
}

// SetConsent records a preference and persists the whole ledger.
func (l *ConsentLedger) SetConsent(ctx context.Context, contact string, status models.ConsentStatus) error {
	consent, err := l.store.LoadConsent(ctx)
	if err != nil {
		// keep going with an empty ledger rather than drop the customer's answer
		l.logger.Error("load consent", "error", err)
	}
	if consent == nil {
		consent = map[string]models.ConsentStatus{}
	}
	consent[utils.NormalizeNumber(contact)] = status
	return l.store.SaveConsent(ctx, consent)
}

// IsAuthorizedSender returns the upper-cased role holding the number, if any.
// Roles are scanned in name order so a number listed twice resolves the same way every time.
func (l *ConsentLedger) IsAuthorizedSender(ctx context.Context, contact string) (string, bool) {
	senders, err := l.store.LoadAuthorizedSenders(ctx)
	if err != nil {
		l.logger.Error("load authorized senders", "error", err)
		return "", false
	}

	number := utils.NormalizeNumber(contact)
	if number == "" {
		return "", false
	}

	roles := make([]string, 0, len(senders))
	for role := range senders {
		roles = append(roles, role)
	}
	slices.Sort(roles)

	for _, role := range roles {
		if slices.Contains(senders[role], number) {
			return strings.ToUpper(role), true
		}
	}
	return "", false
}

// Eligible filters contacts down to those a broadcast may reach. The ledger
// is read once for the whole directory.
func (l *ConsentLedger) Eligible(ctx context.Context, contacts []models.Contact) []models.Contact {
	consent, err := l.store.LoadConsent(ctx)
	if err != nil {
		l.logger.Error("load consent", "error", err)
		consent = map[string]models.ConsentStatus{}
	}

	eligible := make([]models.Contact, 0, len(contacts))
	for _, c := range contacts {
		status, ok := consent[utils.NormalizeNumber(c.Identifier())]
		if !ok {
			status = models.ConsentUnknown
		}
		if status.Eligible() {
			eligible = append(eligible, c)
		}
	}
	return eligible
}

// Summary counts stored preferences by status.
func (l *ConsentLedger) Summary(ctx context.Context) (map[models.ConsentStatus]int, error) {
	consent, err := l.store.LoadConsent(ctx)
	if err != nil {
		return nil, err
	}
	out := map[models.ConsentStatus]int{}
	for _, status := range consent {
		out[status]++
	}
	return out, nil
}
