package core

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestIsValidIdentifier(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    bool
		comment string
	}{
		{"valid simple", "my_table", true, ""},
		{"valid with numbers", "table_123", true, ""},
		{"valid uppercase", "MY_TABLE", true, ""},
		{"valid underscore start", "_table", true, ""},
		{"valid short", "a", true, ""},
		{"valid long (64 chars)", strings.Repeat("a", 64), true, ""},
		{"invalid empty", "", false, "empty string"},
		{"invalid space", "my table", false, "contains space"},
		{"invalid hyphen", "my-table", false, "contains hyphen"},
		{"invalid quote", `users"`, false, "contains quote"},
		{"invalid too long", strings.Repeat("a", 65), false, "exceeds 64 chars"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := IsValidIdentifier(tc.input)
			if got != tc.want {
				t.Errorf("IsValidIdentifier(%q) = %v; want %v. %s", tc.input, got, tc.want, tc.comment)
			}
		})
	}
}

func TestSanitizeDatabaseName(t *testing.T) {
	testCases := []struct {
		name  string
		parts []string
		want  string
	}{
		{"simple", []string{"nl", "abc123", "Blog"}, "nl_abc123_blog"},
		{"spaces and dashes", []string{"nl", "My Cool-Project!"}, "nl_my_cool_project"},
		{"empty part skipped", []string{"nl", "", "shop"}, "nl_shop"},
		{"truncated", []string{strings.Repeat("x", 80)}, strings.Repeat("x", 63)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := SanitizeDatabaseName(tc.parts...)
			if got != tc.want {
				t.Errorf("SanitizeDatabaseName(%v) = %q; want %q", tc.parts, got, tc.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("Truncate short = %q", got)
	}
	if got := Truncate(strings.Repeat("a", 250), 200); len(got) != 200 {
		t.Errorf("Truncate long length = %d; want 200", len(got))
	}
	// counts characters, not bytes
	if got := Truncate("aé", 2); got != "aé" {
		t.Errorf("Truncate multibyte = %q; want %q", got, "aé")
	}
	cyrillic := strings.Repeat("ошибка ", 50)
	if got := Truncate(cyrillic, 200); utf8.RuneCountInString(got) != 200 || !strings.HasPrefix(cyrillic, got) {
		t.Errorf("Truncate cyrillic runes = %d; want 200", utf8.RuneCountInString(got))
	}
	if got := Truncate("héllo", 0); got != "" {
		t.Errorf("Truncate zero = %q", got)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	if got := QuoteIdentifier("users"); got != `"users"` {
		t.Errorf("QuoteIdentifier = %s", got)
	}
	if got := QuoteIdentifier(`we"ird`); got != `"we""ird"` {
		t.Errorf("QuoteIdentifier escaping = %s", got)
	}
	if got := QualifiedName("public", "users"); got != `"public"."users"` {
		t.Errorf("QualifiedName = %s", got)
	}
	if got := QualifiedName("", "users"); got != `"users"` {
		t.Errorf("QualifiedName without schema = %s", got)
	}
}
