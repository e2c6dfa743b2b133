package normalizer

import (
	"regexp"
	"strings"

	"vendor-reconciliation-service/internal/models"
)

var (
	genericPrefixPattern = regexp.MustCompile(`^[A-Z]{1,3}[\s\-_./]*`)
	yearTokenPattern     = regexp.MustCompile(`20[0-9]{2}[\s\-_./]*`)
	nonAlphanumPattern   = regexp.MustCompile(`[^A-Z0-9]`)
)

// CleanInvoiceCode derives the normalized matching key from a raw invoice
// code. "INV00/0123", "inv-000123" and "INV 123" all clean to "123". When
// nothing usable remains the sentinel "0" is returned.
//
// The pipeline (uppercase, strip known prefix tokens, strip a generic 1-3
// letter prefix, strip embedded year tokens, strip non-alphanumerics, strip
// leading zeros) is run to a fixpoint: stripping leading zeros can expose a
// fresh letter prefix, and two raw codes are the same invoice only if a
// stable key says so. Idempotence is a hard requirement of the matcher.
func (v *Vocabulary) CleanInvoiceCode(raw string) string {
	s := v.cleanOnce(raw)
	for {
		next := v.cleanOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func (v *Vocabulary) cleanOnce(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return models.SentinelCode
	}

	s = v.stripPrefixToken(s)
	s = genericPrefixPattern.ReplaceAllString(s, "")
	s = yearTokenPattern.ReplaceAllString(s, "")
	s = nonAlphanumPattern.ReplaceAllString(s, "")
	s = strings.TrimLeft(s, "0")

	if s == "" {
		return models.SentinelCode
	}
	return s
}

// stripPrefixToken removes the longest known document prefix together with
// any trailing separator run.
func (v *Vocabulary) stripPrefixToken(s string) string {
	best := ""
	for _, token := range v.PrefixTokens {
		if len(token) > len(best) && strings.HasPrefix(s, token) {
			best = token
		}
	}
	if best == "" {
		return s
	}
	return strings.TrimLeft(s[len(best):], " \t-_./")
}

// HasUsableCode reports whether a raw invoice code yields a non-sentinel
// normalized key. Lines without one cannot join invoice consolidation and
// are treated as payment candidates.
func (v *Vocabulary) HasUsableCode(raw string) bool {
	if len(strings.TrimSpace(raw)) < 2 {
		return false
	}
	return v.CleanInvoiceCode(raw) != models.SentinelCode
}
