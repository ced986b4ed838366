package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CanonicalDateFormat is the format every ledger date is stored in.
const CanonicalDateFormat = "2006-01-02"

// datePattern describes one candidate ordering of the three numeric fields.
type datePattern struct {
	day, month, year int // index of each field within the split parts
}

// Candidate orderings, tried first to last. DD-MM-YYYY leads because most of
// the supported broker exports use it; purely numeric dates like "03-04-2024"
// are genuinely ambiguous and are resolved by this priority, not certainty.
var datePatterns = []datePattern{
	{day: 0, month: 1, year: 2}, // DD-MM-YYYY
	{day: 2, month: 1, year: 0}, // YYYY-MM-DD
	{day: 1, month: 0, year: 2}, // MM-DD-YYYY
	{day: 0, month: 2, year: 1}, // DD-YYYY-MM
	{day: 2, month: 0, year: 1}, // YYYY-DD-MM
}

// Fallback layouts for inputs the ordered patterns cannot split.
var fallbackLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
}

// NormalizeDate parses a free-form date string into YYYY-MM-DD. It never
// fails hard; unparseable input yields ok=false and the caller drops the row.
// Any time-of-day suffix is stripped before parsing.
func NormalizeDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	// "15-03-2024 09:15:00", "2024-03-15T09:15:00" -> date part only. The
	// suffix is dropped only when it carries a clock, so spelled-out dates
	// like "15 Mar 2024" survive intact.
	if i := strings.IndexAny(s, " T"); i > 0 && strings.ContainsRune(s[i:], ':') {
		s = s[:i]
	}

	parts := splitDateFields(s)
	if len(parts) == 3 {
		for _, p := range datePatterns {
			day, errD := strconv.Atoi(parts[p.day])
			month, errM := strconv.Atoi(parts[p.month])
			year, errY := strconv.Atoi(parts[p.year])
			if errD != nil || errM != nil || errY != nil {
				break // non-numeric field, try the layout fallbacks
			}
			if day < 1 || day > 31 || month < 1 || month > 12 || year < 2000 || year > 2100 {
				continue
			}
			return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(CanonicalDateFormat), true
		}
	}
	return "", false
}

func splitDateFields(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '/' || r == '.'
	})
}
