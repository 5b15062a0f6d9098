package models

import (
	"time"
)

// SessionStep is the position of a contact in the order re-capture conversation.
type SessionStep string

const (
	// StepNone is never persisted; it stands for "no session record".
	StepNone            SessionStep = ""
	StepAwaitingItem    SessionStep = "awaiting_item"
	StepAwaitingAddress SessionStep = "awaiting_address"
	StepAwaitingPayment SessionStep = "awaiting_payment"
	StepAwaitingChange  SessionStep = "awaiting_change"
)

// OrderDraft is the partial order collected so far.
type OrderDraft struct {
	Item    string        `json:"item,omitempty"`
	Address string        `json:"endereco,omitempty"`
	Payment PaymentMethod `json:"pagamento,omitempty"`
	Change  string        `json:"troco,omitempty"`
}

// Session stores conversation progress for one contact.
type Session struct {
	ContactID string      `json:"-"`
	Step      SessionStep `json:"step"`
	Data      OrderDraft  `json:"data"`
	StartedAt time.Time   `json:"startedAt"`
}

// Active reports whether the session exists.
func (s Session) Active() bool {
	return s.Step != StepNone
}
