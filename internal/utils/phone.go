package utils

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// WhatsAppUserSuffix is the transport suffix carried by individual chat ids.
const WhatsAppUserSuffix = "@s.whatsapp.net"

// NormalizeNumber strips transport decorations from a chat id so the result
// can be used as a store key: "5511999999999@s.whatsapp.net" and
// "whatsapp:+5511999999999" both become "5511999999999".
func NormalizeNumber(id string) string {
	n := strings.TrimSpace(id)
	n = strings.TrimPrefix(n, "whatsapp:")
	n = strings.TrimSuffix(n, WhatsAppUserSuffix)
	return strings.TrimPrefix(n, "+")
}

// E164 renders a normalized number with a leading plus sign.
func E164(id string) string {
	n := NormalizeNumber(id)
	if n == "" {
		return ""
	}
	return "+" + n
}

// NormalizeCommand prepares inbound text for keyword comparison. Phones may
// send "NÃO" as N + A + combining tilde, so the text is composed first.
func NormalizeCommand(text string) string {
	return strings.ToUpper(strings.TrimSpace(norm.NFC.String(text)))
}
