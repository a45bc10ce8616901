// Package phone normalizes customer phone numbers before they are stored or
// handed to the messaging provider.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Indian salons are the primary tenant base, so bare national numbers parse
// against IN.
const defaultRegion = "IN"

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns
// the trimmed input unchanged so the caller can still log and store it.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}
	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}
