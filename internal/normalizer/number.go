package normalizer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeNumber converts a locale-formatted number string to a decimal.
// It handles both European ("1.234,56") and US ("1,234.56") conventions:
// when both separators appear once, the later one is the decimal point; a
// lone comma is taken as a decimal comma; multiple periods are all treated
// as thousands separators. A value that still fails to parse degrades to
// zero rather than an error, since a dirty field must not abort
// reconciliation of an otherwise good ledger.
func NormalizeNumber(v string) decimal.Decimal {
	s := stripNonNumeric(strings.TrimSpace(v))
	if s == "" {
		return decimal.Zero
	}

	commas := strings.Count(s, ",")
	periods := strings.Count(s, ".")

	switch {
	case commas == 1 && periods == 1:
		if strings.Index(s, ",") > strings.Index(s, ".") {
			// European: period groups thousands, comma is the decimal.
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case commas == 1:
		s = strings.Replace(s, ",", ".", 1)
	case periods > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// stripNonNumeric keeps only digits, comma, period and minus.
func stripNonNumeric(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
