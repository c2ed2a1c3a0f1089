// Package logger provides structured logging for authshell.
package logger

import (
	"log/slog"
	"strings"
)

// Value prefixes that mark a credential regardless of the attribute key.
var sensitiveValuePrefixes = []string{
	"Bearer ", // Authorization header value
	"eyJ",     // JWT (base64url of `{"`)
}

// Sensitive key patterns that should be redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"key",
	"credential",
	"authorization",
	"bearer",
	"cookie",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive checks if an attribute contains sensitive data
// and redacts it if necessary.
func redactSensitive(a slog.Attr) slog.Attr {
	// Value prefixes take priority over key-based detection so the
	// masked form keeps a hint of the token for debugging.
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()
		for _, prefix := range sensitiveValuePrefixes {
			if strings.HasPrefix(strVal, prefix) {
				return slog.String(a.Key, maskValue(strVal, prefix))
			}
		}

		if IsSensitiveKey(a.Key) && strVal != "" {
			return slog.String(a.Key, redactedValue)
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// maskValue partially masks a sensitive value, keeping prefix and hints.
// Format: prefix + first 3 chars + "..." + last 3 chars
func maskValue(value, prefix string) string {
	if len(value) <= len(prefix)+6 {
		return prefix + "***"
	}

	body := value[len(prefix):]
	return prefix + body[:3] + "..." + body[len(body)-3:]
}

// RedactString manually redacts a string value.
// Values without a known credential prefix are returned unchanged.
func RedactString(value string) string {
	for _, prefix := range sensitiveValuePrefixes {
		if strings.HasPrefix(value, prefix) {
			return maskValue(value, prefix)
		}
	}
	return value
}

// MaskToken hides all but the edges of an opaque session token.
// Used when a token must be shown to a person (config show, status --wide).
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if masked := RedactString(token); masked != token {
		return masked
	}
	return maskValue(token, "")
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue checks if a value appears to be sensitive.
func IsSensitiveValue(value string) bool {
	for _, prefix := range sensitiveValuePrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}
