package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashString creates a SHA-256 hash of the input string
func HashString(input string) string {
	h := sha256.New()
	h.Write([]byte(input))
	return hex.EncodeToString(h.Sum(nil))
}

// ContactHash identifies a customer without storing or logging the raw phone
// number. Formatting differences ("(305) 555-0100" vs "3055550100") and a
// leading US country code hash the same.
func ContactHash(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && strings.HasPrefix(digits, "1") {
		digits = digits[1:]
	}
	return HashString(digits)
}

// ShortHash is the first 12 hex characters of HashString, for log fields.
func ShortHash(input string) string {
	return HashString(strings.ToLower(strings.TrimSpace(input)))[:12]
}
