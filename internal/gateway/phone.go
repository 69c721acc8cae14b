package gateway

import "strings"

// testKeyPrefix marks a sandbox public key. The gateway's test and live modes
// expect different phone formats for the same logical number, and the right
// form is selected here so callers never carry mode awareness.
const testKeyPrefix = "CHAPUBK_TEST"

// FormatPhone renders an Ethiopian mobile number in the form the gateway mode
// expects: local leading-zero (09...) in test mode, international (+2519...)
// in live mode.
func FormatPhone(phone, publicKey string) string {
	digits := normalizeDigits(phone)
	if digits == "" {
		return phone
	}

	if IsTestMode(publicKey) {
		return "0" + digits
	}
	return "+251" + digits
}

// IsTestMode reports whether the public key belongs to the sandbox environment.
func IsTestMode(publicKey string) bool {
	return strings.HasPrefix(publicKey, testKeyPrefix)
}

// normalizeDigits strips any prefix down to the bare 9-digit subscriber part
// (9XXXXXXXX or 7XXXXXXXX).
func normalizeDigits(phone string) string {
	s := strings.TrimSpace(phone)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimPrefix(s, "+")
	s = strings.TrimPrefix(s, "251")
	s = strings.TrimPrefix(s, "0")
	if len(s) != 9 {
		return ""
	}
	return s
}
