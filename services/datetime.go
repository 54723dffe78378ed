package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISODateLayout is the canonical stored form of Event.Date.
const ISODateLayout = "2006-01-02T15:04:05.000Z"

// dateLayouts are tried in order. Layouts without a zone are read as UTC and
// slash dates are month first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"1/2/2006 15:04",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Mon Jan 2 2006",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
}

// NormalizeDate parses raw and returns it as a UTC ISO-8601 instant with
// millisecond precision, e.g. 2025-03-01T00:00:00.000Z.
func NormalizeDate(raw string) (string, error) {
	trimmed := trimSpace(raw)
	if trimmed == "" {
		return "", invalid("date", "invalid date; expected a parseable date string")
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return t.UTC().Format(ISODateLayout), nil
		}
	}
	return "", invalid("date", "invalid date; expected a parseable date string")
}

var (
	time24 = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)(?::([0-5]\d))?$`)
	time12 = regexp.MustCompile(`^(0?[1-9]|1[0-2]):([0-5]\d)[` + whitespace + `]*([AaPp][Mm])$`)
)

// NormalizeTime accepts HH:mm, HH:mm:ss (24h) or h:mm AM/PM and returns HH:mm.
// The 24h form is matched first; seconds are dropped.
func NormalizeTime(raw string) (string, error) {
	trimmed := trimSpace(raw)

	if m := time24.FindStringSubmatch(trimmed); m != nil {
		return m[1] + ":" + m[2], nil
	}

	if m := time12.FindStringSubmatch(trimmed); m != nil {
		hour, _ := strconv.Atoi(m[1])
		pm := strings.EqualFold(m[3], "pm")
		switch {
		case hour == 12 && !pm:
			hour = 0
		case hour != 12 && pm:
			hour += 12
		}
		return fmt.Sprintf("%02d:%s", hour, m[2]), nil
	}

	return "", invalid("time", "invalid time; expected HH:mm (24h) or h:mm AM/PM")
}
