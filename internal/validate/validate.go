package validate

import (
	"strconv"
	"strings"
	"unicode"
)

// ParsePositive parses a strictly positive integer.
func ParsePositive(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// ClampPageSize returns def for a missing or invalid value and caps at max.
func ClampPageSize(raw string, def, max int) int {
	n, ok := ParsePositive(raw)
	if !ok {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// SearchTerms splits a search string on whitespace and commas, dropping
// empties and duplicates.
func SearchTerms(raw string) []string {
	raw = Sanitize(raw)
	if raw == "" {
		return nil
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		key := strings.ToLower(f)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}
