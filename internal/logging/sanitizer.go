package logging

import "strings"

// sensitivePatterns covers the secret surface SPEC_FULL §2 calls out for
// multi-vendor device CLIs: enable secrets, line/VTY passwords, SNMP
// community strings, and IPsec pre-shared keys, all of which commonly
// appear verbatim inside the commands SendCommand/SendConfigSet log.
var sensitivePatterns = []string{
	"password",
	"pre-shared-key",
	"secret",
	"community", // SNMP community strings
	"key",
}

// redactedMessage is the replacement text for sensitive data.
const redactedMessage = "[REDACTED]"

// SanitizeString redacts a command or config line before it reaches a log
// line, so that "enable secret foo", "username admin secret bar" and
// "snmp-server community foo RO" never appear in cleartext logs.
func SanitizeString(s string) string {
	if s == "" {
		return s
	}

	lower := strings.ToLower(s)
	for _, pattern := range sensitivePatterns {
		if strings.Contains(lower, pattern) {
			return redactedMessage
		}
	}

	return s
}
