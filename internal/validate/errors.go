package validate

import (
	"sort"
	"strings"
)

// Errors maps a field name to its messages. A nil or empty Errors is no error.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e Errors) Has(field string) bool { return len(e[field]) > 0 }

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e[f], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns e as an error, or nil when there is nothing to report.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Merge adds other's messages for fields e does not already report.
func (e Errors) Merge(other Errors) {
	for f, msgs := range other {
		if !e.Has(f) {
			e[f] = msgs
		}
	}
}
