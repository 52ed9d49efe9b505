// internal/core/types.go
package core

import "strings"

// Cast suffixes appended to placeholders for date-like columns.
const (
	CastDate        = "::date"
	CastTime        = "::time"
	CastTimestamp   = "::timestamp"
	CastTimestampTZ = "::timestamptz"
)

// IsDateType reports whether a declared SQL type needs date handling.
func IsDateType(sqlType string) bool {
	t := strings.ToLower(sqlType)
	return strings.Contains(t, "date") || strings.Contains(t, "time")
}

// CastSuffixFor maps a declared SQL type to the cast appended to its placeholder.
// It returns "" for types that need no cast.
func CastSuffixFor(sqlType string) string {
	t := strings.ToLower(strings.TrimSpace(sqlType))
	switch {
	case t == "":
		return ""
	case strings.Contains(t, "timestamptz"), strings.Contains(t, "with time zone"):
		return CastTimestampTZ
	case strings.Contains(t, "timestamp"):
		return CastTimestamp
	case strings.Contains(t, "date") && !strings.Contains(t, "time"):
		return CastDate
	case strings.Contains(t, "time"):
		return CastTime
	default:
		return ""
	}
}
