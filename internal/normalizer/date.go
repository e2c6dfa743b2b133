package normalizer

import (
	"strings"
	"time"
)

// ISODate is the canonical date format emitted by NormalizeDate.
const ISODate = "2006-01-02"

// explicitDateLayouts are tried in order before any fallback. Day-first
// variants come first: these ledgers are predominantly European.
var explicitDateLayouts = []string{
	"02/01/2006", "02-01-2006", "02.01.2006",
	"2006/01/02", "2006-01-02", "2006.01.02",
	"02/01/06", "02-01-06", "02.01.06",
}

// fallbackDateLayouts cover the stragglers seen in exported statements:
// timestamps, textual months and the occasional US-ordered date. They are
// only consulted after every day-first layout has failed.
var fallbackDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
	"2 January 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"01/02/2006",
}

// NormalizeDate converts a free-form date string to ISO-8601 (YYYY-MM-DD).
// Unparsable input yields an empty string, which downstream means "no date"
// and excludes the row from tier-3 date matching.
func NormalizeDate(v string) string {
	s := strings.TrimSpace(v)
	if s == "" {
		return ""
	}

	for _, layout := range explicitDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format(ISODate)
		}
	}
	for _, layout := range fallbackDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format(ISODate)
		}
	}
	return ""
}
