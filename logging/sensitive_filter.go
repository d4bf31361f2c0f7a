package logging

import (
	"regexp"
	"strings"
)

// RedactedPlaceholder is the string used to replace sensitive data.
const RedactedPlaceholder = "[REDACTED]"

// sensitivePatterns are compiled once at package initialization.
var sensitivePatterns = []*regexp.Regexp{
	// OpenAI API keys: sk-... (legacy) or sk-proj-... (project-scoped)
	regexp.MustCompile(`(?i)(sk-[a-zA-Z0-9_-]{20,})`),
	// Bearer tokens in logged headers
	regexp.MustCompile(`(?i)(bearer\s+[a-zA-Z0-9._-]{20,})`),
	// Generic secret assignments
	regexp.MustCompile(`(?i)(password\s*[:=]\s*[^\s,;]{8,})`),
	regexp.MustCompile(`(?i)(secret\s*[:=]\s*[^\s,;]{8,})`),
	regexp.MustCompile(`(?i)(api_key\s*[:=]\s*[^\s,;]{8,})`),
	regexp.MustCompile(`(?i)(apikey\s*[:=]\s*[^\s,;]{8,})`),
}

// sensitiveFieldFragments flag field names whose values are always redacted.
var sensitiveFieldFragments = []string{
	"api_key",
	"apikey",
	"password",
	"secret",
	"token",
}

// RedactSensitiveData scans a string and redacts any detected sensitive
// data such as API keys or bearer tokens.
//
// Example:
//
//	RedactSensitiveData("key is sk-abc123def456ghi789jkl012")
//	// "key is [REDACTED]"
func RedactSensitiveData(value string) string {
	if value == "" {
		return value
	}
	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedPlaceholder)
	}
	return result
}

// RedactField redacts a field value when either the field name marks it as
// sensitive or the value itself matches a sensitive pattern.
func RedactField(fieldName, value string) string {
	lower := strings.ToLower(fieldName)
	for _, fragment := range sensitiveFieldFragments {
		if strings.Contains(lower, fragment) {
			return RedactedPlaceholder
		}
	}
	return RedactSensitiveData(value)
}
