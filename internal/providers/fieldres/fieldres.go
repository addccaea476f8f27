// Package fieldres implements ordered field resolution over raw provider
// JSON. Providers rename and nest the same logical field across response
// variants; a resolver is an ordered path list tried left to right, so
// extraction is deterministic and testable independent of any live provider.
package fieldres

import (
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

// First returns the first existing result among paths, tried in order.
func First(doc gjson.Result, paths ...string) gjson.Result {
	for _, path := range paths {
		if v := doc.Get(path); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

// FirstString returns the first non-empty string among paths.
func FirstString(doc gjson.Result, paths ...string) string {
	for _, path := range paths {
		if v := doc.Get(path); v.Exists() {
			if s := v.String(); s != "" {
				return s
			}
		}
	}
	return ""
}

// FirstFloat returns the first numeric value among paths, with presence.
// A string value that parses as a number counts; gjson handles the coercion.
func FirstFloat(doc gjson.Result, paths ...string) (float64, bool) {
	for _, path := range paths {
		if v := doc.Get(path); v.Exists() {
			return v.Float(), true
		}
	}
	return 0, false
}

// SplitPrice separates a textual price that mixes currency symbol and
// magnitude, e.g. "$1,234.56" or "€89". The leading non-numeric run becomes
// the currency; the remainder is the magnitude text with separators kept.
// Used only when the provider supplied no separate currency field.
func SplitPrice(raw string) (currency, amount string) {
	raw = strings.TrimSpace(raw)
	i := 0
	for _, r := range raw {
		if unicode.IsDigit(r) {
			break
		}
		i += len(string(r))
	}
	return strings.TrimSpace(raw[:i]), strings.TrimSpace(raw[i:])
}
