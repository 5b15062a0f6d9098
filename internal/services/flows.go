package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Ananth-NQI/recovery-bot/internal/models"
	"github.com/Ananth-NQI/recovery-bot/internal/utils"
)

const commandRestart = "REFAZER"

// OrderFlow is the order re-capture strategy chosen at startup.
type OrderFlow interface {
	// Name identifies the flow in logs.
	Name() string
	// Accepts reports whether a message that matched no command belongs to
	// this flow. command is the normalized text.
	Accepts(ctx context.Context, from, command string) bool
	Handle(ctx context.Context, from, text string) error
	// Instructions is the how-to section of the contingency message.
	Instructions() string
}

// ConversationFlow collects an order one answer at a time:
// item, address, payment and, for cash, the change note.
type ConversationFlow struct {
	sessions *SessionManager
	orders   *OrderLogger
	sender   MessageSender
	logger   *slog.Logger
}

// NewConversationFlow creates the step-by-step flow.
func NewConversationFlow(sessions *SessionManager, orders *OrderLogger, sender MessageSender, logger *slog.Logger) *ConversationFlow {
	return &ConversationFlow{
		sessions: sessions,
		orders:   orders,
		sender:   sender,
		logger:   logger.With("component", "conversation"),
	}
}

func (f *ConversationFlow) Name() string { return "conversation" }

func (f *ConversationFlow) Instructions() string { return conversationInstructions }

// Accepts takes any message mentioning REFAZER and everything from a
// contact that is in the middle of an order.
func (f *ConversationFlow) Accepts(ctx context.Context, from, command string) bool {
	if strings.Contains(command, commandRestart) {
		return true
	}
	return f.sessions.GetSession(ctx, from).Active()
}

// Handle advances the contact's session by one message. A blank answer
// repeats the current question.
func (f *ConversationFlow) Handle(ctx context.Context, from, text string) error {
	session := f.sessions.GetSession(ctx, from)
	answer := strings.TrimSpace(text)

	switch session.Step {
	case models.StepNone:
		if utils.NormalizeCommand(text) != commandRestart {
			return nil
		}
		if err := f.sessions.StartSession(ctx, from); err != nil {
			return err
		}
		f.reply(ctx, from, msgAskItem)
		return nil

	case models.StepAwaitingItem:
		if answer == "" {
			f.reply(ctx, from, msgAskItem)
			return nil
		}
		if err := f.sessions.UpdateSession(ctx, from, models.StepAwaitingAddress, func(d *models.OrderDraft) {
			d.Item = answer
		}); err != nil {
			return err
		}
		f.reply(ctx, from, fmt.Sprintf(msgAskAddress, answer))
		return nil

	case models.StepAwaitingAddress:
		if answer == "" {
			f.reply(ctx, from, fmt.Sprintf(msgAskAddress, session.Data.Item))
			return nil
		}
		if err := f.sessions.UpdateSession(ctx, from, models.StepAwaitingPayment, func(d *models.OrderDraft) {
			d.Address = answer
		}); err != nil {
			return err
		}
		f.reply(ctx, from, fmt.Sprintf(msgAskPayment, answer))
		return nil

	case models.StepAwaitingPayment:
		payment, ok := ParsePayment(text)
		if !ok {
			f.reply(ctx, from, msgInvalidPayment)
			return nil
		}
		if payment == models.PaymentCash {
			if err := f.sessions.UpdateSession(ctx, from, models.StepAwaitingChange, func(d *models.OrderDraft) {
				d.Payment = payment
			}); err != nil {
				return err
			}
			f.reply(ctx, from, msgAskChange)
			return nil
		}
		draft := session.Data
		draft.Payment = payment
		return f.finalize(ctx, from, draft)

	case models.StepAwaitingChange:
		if answer == "" {
			f.reply(ctx, from, msgAskChange)
			return nil
		}
		draft := session.Data
		draft.Payment = models.PaymentCash
		draft.Change = answer
		return f.finalize(ctx, from, draft)

	default:
		f.logger.Warn("discarding session with unknown step", "contact", from, "step", session.Step)
		return f.sessions.CompleteSession(ctx, from)
	}
}

// finalize logs the order, confirms it and closes the session. If the order
// cannot be saved the session stays so the customer can answer again.
func (f *ConversationFlow) finalize(ctx context.Context, from string, draft models.OrderDraft) error {
	order, err := f.orders.LogOrder(ctx, from, draft)
	if err != nil {
		return fmt.Errorf("finalize order for %s: %w", from, err)
	}
	f.reply(ctx, from, OrderSummary(order))
	return f.sessions.CompleteSession(ctx, from)
}

func (f *ConversationFlow) reply(ctx context.Context, to, text string) {
	if err := f.sender.SendText(ctx, to, text); err != nil {
		f.logger.Error("reply failed", "to", to, "error", err)
	}
}

// ParsePayment maps a payment answer to a method. Only the three options
// offered in the prompt are accepted.
func ParsePayment(text string) (models.PaymentMethod, bool) {
	switch utils.NormalizeCommand(text) {
	case "DINHEIRO":
		return models.PaymentCash, true
	case "PIX":
		return models.PaymentPix, true
	case "CARTÃO", "CARTAO":
		return models.PaymentCard, true
	default:
		return "", false
	}
}

// SingleMessageFlow takes the whole order in one "REFAZER ..." message and
// stores the text after the keyword untouched.
type SingleMessageFlow struct {
	orders *OrderLogger
	sender MessageSender
	logger *slog.Logger
}

// NewSingleMessageFlow creates the one-shot flow.
func NewSingleMessageFlow(orders *OrderLogger, sender MessageSender, logger *slog.Logger) *SingleMessageFlow {
	return &SingleMessageFlow{
		orders: orders,
		sender: sender,
		logger: logger.With("component", "single_message"),
	}
}

func (f *SingleMessageFlow) Name() string { return "single_message" }

func (f *SingleMessageFlow) Instructions() string { return singleMessageInstructions }

func (f *SingleMessageFlow) Accepts(_ context.Context, _ string, command string) bool {
	return strings.HasPrefix(command, commandRestart)
}

// Handle logs the free-text order carried by the message.
func (f *SingleMessageFlow) Handle(ctx context.Context, from, text string) error {
	details, ok := SplitRestartCommand(text)
	if !ok {
		return nil
	}
	if details == "" {
		f.reply(ctx, from, msgSingleMessageEmpty)
		return nil
	}

	order, err := f.orders.LogOrder(ctx, from, models.OrderDraft{
		Item:    details,
		Payment: models.PaymentFreeText,
	})
	if err != nil {
		return fmt.Errorf("log free-text order for %s: %w", from, err)
	}
	f.reply(ctx, from, FreeTextSummary(order))
	return nil
}

func (f *SingleMessageFlow) reply(ctx context.Context, to, text string) {
	if err := f.sender.SendText(ctx, to, text); err != nil {
		f.logger.Error("reply failed", "to", to, "error", err)
	}
}

// SplitRestartCommand returns the text following a leading REFAZER keyword,
// without the separators customers put right after it.
func SplitRestartCommand(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if len(text) < len(commandRestart) || !strings.EqualFold(text[:len(commandRestart)], commandRestart) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimLeft(text[len(commandRestart):], " \t\r\n,;:-")), true
}

var (
	_ OrderFlow = (*ConversationFlow)(nil)
	_ OrderFlow = (*SingleMessageFlow)(nil)
)
