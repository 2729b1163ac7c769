// Package strutil provides string utilities for identifier checks, shell
// quoting and list parsing used throughout the nocstudio codebase.
package strutil

import (
	"strings"
	"unicode"
)

// -----------------------------------------------------------------------------
// Identifiers
// -----------------------------------------------------------------------------

// IsIdentifier reports whether s starts with a letter followed only by
// letters and digits.
// Examples: User -> true, User2 -> true, 2User -> false, user_name -> false
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// HasIDSuffix reports whether name ends with "ID" or "Id".
// Examples: AuthorId -> true, AuthorID -> true, Paid -> false
func HasIDSuffix(name string) bool {
	return strings.HasSuffix(name, "ID") || strings.HasSuffix(name, "Id")
}

// -----------------------------------------------------------------------------
// Quoting
// -----------------------------------------------------------------------------

// Quote wraps s in double quotes, escaping embedded quotes.
// Example: Quote(`My "App"`) -> `"My \"App\""`
func Quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// Unquote strips one pair of surrounding double quotes, if present.
func Unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.ReplaceAll(s[1:len(s)-1], `\"`, `"`)
	}
	return s
}

// -----------------------------------------------------------------------------
// Lists
// -----------------------------------------------------------------------------

// SplitList splits a comma-separated list, trimming items and dropping blanks.
// Example: " A, ,B " -> ["A", "B"]
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Formatting
// -----------------------------------------------------------------------------

// Indent indents each non-empty line of text with the given number of spaces.
func Indent(text string, spaces int) string {
	prefix := strings.Repeat(" ", spaces)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
