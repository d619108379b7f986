package composer

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// RawQuery holds client-supplied parameters, values being strings or numbers.
type RawQuery map[string]any

// FromValues adapts a parsed URL query, keeping the first value of each key.
func FromValues(values url.Values) RawQuery {
	raw := make(RawQuery, len(values))
	for key, list := range values {
		if len(list) > 0 {
			raw[key] = list[0]
		}
	}
	return raw
}

// String returns the parameter as text. Missing keys, empty strings and
// values that have no text form report false.
func (q RawQuery) String(key string) (string, bool) {
	value, ok := q[key]
	if !ok || value == nil {
		return "", false
	}
	text, err := cast.ToStringE(value)
	if err != nil || text == "" {
		return "", false
	}
	return text, true
}

// Int parses the parameter as a base-10 integer. Non-numeric values report
// false. "010" reads as ten, not octal.
func (q RawQuery) Int(key string) (int, bool) {
	text, ok := q.String(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Bool reports whether the parameter holds a true value ("1", "true", ...).
func (q RawQuery) Bool(key string) bool {
	text, ok := q.String(key)
	if !ok {
		return false
	}
	b, err := cast.ToBoolE(strings.TrimSpace(text))
	return err == nil && b
}

// splitAndFilter splits text by delimiter and drops empty tokens.
func splitAndFilter(text, delimiter string) []string {
	parts := strings.Split(text, delimiter)
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
