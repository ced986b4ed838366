package validation

import (
	"strings"
	"unicode"
)

// SanitizeCell cleans one CSV cell before it is stored or echoed back:
// unprintable characters are stripped and a leading formula character is
// neutralized so spreadsheet software treats the value as text.
func SanitizeCell(s string) string {
	return SanitizeForFormulaInjection(StripUnprintable(strings.TrimSpace(s)))
}

// SanitizeForFormulaInjection prepends a single quote if the string starts
// with a formula character.
func SanitizeForFormulaInjection(s string) string {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) > 0 {
		firstChar := rune(trimmed[0])
		if firstChar == '=' || firstChar == '+' || firstChar == '@' || firstChar == '\t' || firstChar == '\r' {
			return "'" + s
		}
	}
	return s
}

// StripUnprintable removes non-printable characters, allowing common
// whitespace like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}
