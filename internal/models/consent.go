package models

// ConsentStatus is a contact's broadcast preference.
type ConsentStatus string

const (
	ConsentUnknown ConsentStatus = "unknown"
	ConsentOptIn   ConsentStatus = "opt_in"
	ConsentOptOut  ConsentStatus = "opt_out"
)

// Eligible reports whether broadcasts may reach the contact. Only an
// explicit opt-out excludes.
func (s ConsentStatus) Eligible() bool {
	return s != ConsentOptOut
}
