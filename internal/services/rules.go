package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Ananth-NQI/recovery-bot/internal/models"
	"github.com/Ananth-NQI/recovery-bot/internal/utils"
)

// Commands recognised before any order flow sees the message.
const (
	CommandDeactivate  = "DESATIVAR"
	CommandAlert       = "ALERTA"
	CommandOptIn       = "SIM"
	CommandOptOut      = "NÃO"
	CommandOptOutASCII = "NAO"
)

// Broadcaster starts broadcasts without waiting for delivery.
type Broadcaster interface {
	TriggerAlert(ctx context.Context) (BroadcastPlan, error)
	TriggerDeactivation(ctx context.Context) (BroadcastPlan, error)
}

// RulesEngine routes each inbound message to exactly one handler.
type RulesEngine struct {
	consent    *ConsentLedger
	broadcasts Broadcaster
	flow       OrderFlow
	sender     MessageSender
	logger     *slog.Logger
}

// NewRulesEngine wires the router. flow may be nil to disable order re-capture.
func NewRulesEngine(consent *ConsentLedger, broadcasts Broadcaster, flow OrderFlow, sender MessageSender, logger *slog.Logger) *RulesEngine {
	return &RulesEngine{
		consent:    consent,
		broadcasts: broadcasts,
		flow:       flow,
		sender:     sender,
		logger:     logger.With("component", "rules"),
	}
}

// ProcessMessage handles one text from a contact. Commands are matched in
// priority order, so "NÃO" is always an opt-out even mid-order. Broadcasts
// run detached and their errors are only logged.
func (r *RulesEngine) ProcessMessage(ctx context.Context, from, text string) error {
	command := utils.NormalizeCommand(text)

	switch command {
	case CommandDeactivate:
		role, ok := r.consent.IsAuthorizedSender(ctx, from)
		if !ok {
			r.logger.Warn("unauthorized deactivation attempt", "from", from)
			r.reply(ctx, from, msgDeactivateDenied)
			return nil
		}
		r.logger.Info("deactivation requested", "from", from, "role", role)
		r.trigger(ctx, BroadcastDeactivation, r.broadcasts.TriggerDeactivation)
		return nil

	case CommandAlert:
		role, ok := r.consent.IsAuthorizedSender(ctx, from)
		if !ok {
			// no reply, so the keyword is not advertised to customers
			r.logger.Warn("unauthorized alert attempt", "from", from)
			return nil
		}
		r.logger.Info("alert requested", "from", from, "role", role)
		r.trigger(ctx, BroadcastAlert, r.broadcasts.TriggerAlert)
		return nil

	case CommandOptIn:
		return r.setConsent(ctx, from, models.ConsentOptIn)

	case CommandOptOut, CommandOptOutASCII:
		return r.setConsent(ctx, from, models.ConsentOptOut)
	}

	if r.flow != nil && r.flow.Accepts(ctx, from, command) {
		return r.flow.Handle(ctx, from, text)
	}
	return nil
}

func (r *RulesEngine) trigger(ctx context.Context, kind BroadcastKind, start func(context.Context) (BroadcastPlan, error)) {
	plan, err := start(ctx)
	switch {
	case errors.Is(err, ErrNoRecipients):
		r.logger.Warn("broadcast skipped", "kind", kind, "contacts", plan.Contacts)
	case err != nil:
		r.logger.Error("broadcast failed to start", "kind", kind, "error", err)
	default:
		r.logger.Info("broadcast queued", "kind", kind, "eligible", plan.Eligible, "estimate", plan.Estimate)
	}
}

func (r *RulesEngine) setConsent(ctx context.Context, from string, status models.ConsentStatus) error {
	if err := r.consent.SetConsent(ctx, from, status); err != nil {
		r.logger.Error("save consent", "from", from, "status", status, "error", err)
		return err
	}
	r.logger.Info("consent updated", "from", from, "status", status)
	return nil
}

func (r *RulesEngine) reply(ctx context.Context, to, text string) {
	if err := r.sender.SendText(ctx, to, text); err != nil {
		r.logger.Error("reply failed", "to", to, "error", err)
	}
}
