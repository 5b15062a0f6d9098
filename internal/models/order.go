package models

import "time"

// PaymentMethod values match what customers type, so they are printed as-is.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "DINHEIRO"
	PaymentPix  PaymentMethod = "PIX"
	PaymentCard PaymentMethod = "CARTÃO"
	// PaymentFreeText marks single-message orders whose item holds the whole request.
	PaymentFreeText PaymentMethod = "TEXTO_LIVRE"
)

// Structured reports whether the order carries separate item/address/payment fields.
func (p PaymentMethod) Structured() bool {
	return p != PaymentFreeText
}

// Order is a finalized re-submitted order. Orders are never edited.
type Order struct {
	ID        int64         `json:"id"`
	From      string        `json:"from"`
	Number    string        `json:"numero"`
	Name      *string       `json:"nome"`
	Item      string        `json:"item"`
	Address   *string       `json:"endereco"`
	Payment   PaymentMethod `json:"pagamento"`
	Change    *string       `json:"troco"`
	CreatedAt time.Time     `json:"timestamp"`
}

// CustomerName returns the resolved display name or a generic label.
func (o Order) CustomerName() string {
	if o.Name == nil || *o.Name == "" {
		return "Cliente"
	}
	return *o.Name
}
