// internal/core/validation.go
package core

import (
	"regexp"
	"strings"
)

// Regular expression for valid table/column names (alphanumeric + underscore)
var nameValidationRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var nonIdentChars = regexp.MustCompile(`[^a-z0-9_]+`)

// Postgres truncates identifiers longer than this.
const maxPostgresIdentifier = 63

// IsValidIdentifier checks if a string is a valid identifier (e.g., table_name, column_name)
// Applies basic format and length checks.
func IsValidIdentifier(name string) bool {
	return nameValidationRegex.MatchString(name) && len(name) > 0 && len(name) <= 64
}

// SanitizeDatabaseName lower-cases a name, replaces anything outside [a-z0-9_]
// with underscores and truncates it to the Postgres identifier limit.
func SanitizeDatabaseName(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = nonIdentChars.ReplaceAllString(strings.ToLower(p), "_")
		p = strings.Trim(p, "_")
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	name := strings.Join(cleaned, "_")
	if len(name) > maxPostgresIdentifier {
		name = strings.TrimRight(name[:maxPostgresIdentifier], "_")
	}
	return name
}

// Truncate shortens s to at most n characters (runes).
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
