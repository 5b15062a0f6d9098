package models

import "strings"

// Contact is one entry of the customer directory exported from the shop's
// WhatsApp account. Exports use different keys for the address, so all of
// them are accepted.
type Contact struct {
	Number    string `json:"number,omitempty"`
	ChatID    string `json:"chatId,omitempty"`
	ContactID string `json:"contactId,omitempty"`
	Name      string `json:"name,omitempty"`
}

// Identifier returns the address used for consent lookups.
func (c Contact) Identifier() string {
	switch {
	case c.Number != "":
		return c.Number
	case c.ChatID != "":
		return c.ChatID
	default:
		return c.ContactID
	}
}

// Recipient returns the address messages are delivered to.
func (c Contact) Recipient() string {
	if c.Number != "" {
		return c.Number
	}
	return c.ChatID
}

// DisplayName falls back to the recipient address when the export carries no name.
func (c Contact) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Recipient()
}

// Matches reports whether the contact belongs to a normalized phone number.
// Number fields may hold a full chat id, so containment is enough there.
func (c Contact) Matches(number string) bool {
	if number == "" {
		return false
	}
	if c.Number != "" && strings.Contains(c.Number, number) {
		return true
	}
	return c.ContactID == number
}

// AuthorizedSenders maps a role name to the numbers holding it.
type AuthorizedSenders map[string][]string
