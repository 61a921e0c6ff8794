// Package core provides the domain types shared by the reconciliation
// pipeline, plus parsing helpers for the date, time and price text found in
// the ledger and the report tabs.
package core

import (
	"strings"
	"time"
)

// dateLayouts are tried in order. The first two are self-contained; the
// weekday form carries no year and is resolved against the caller's year.
var dateLayouts = []string{
	"01/02/2006",
	"2006-01-02",
}

const weekdayLayout = "Mon 01/02"

// ParseDate canonicalizes a free-text date into a Date. Accepted forms:
// "MM/DD/YYYY", "YYYY-MM-DD" (also the date prefix of an RFC 3339
// timestamp), and "Mon 01/02" resolved against year. Returns
// *MalformedDateError when nothing matches.
func ParseDate(s string, year int) (Date, error) {
	raw := s
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, &MalformedDateError{Input: raw}
	}
	// RFC 3339 timestamps reduce to their leading date.
	if len(s) > 10 && (s[10] == 'T' || s[10] == ' ') {
		s = s[:10]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	if t, err := time.Parse(weekdayLayout, s); err == nil {
		return NewDate(year, t.Month(), t.Day()), nil
	}
	return Date{}, &MalformedDateError{Input: raw}
}

// ParseClock parses a 12-hour time of day such as "03:15 PM". An empty
// string is a valid absent clock; anything else unparseable is
// *MalformedDateError.
func ParseClock(s string) (Clock, error) {
	raw := s
	s = strings.TrimSpace(s)
	if s == "" {
		return Clock{}, nil
	}
	t, err := time.Parse("03:04 PM", strings.ToUpper(s))
	if err != nil {
		return Clock{}, &MalformedDateError{Input: raw}
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute(), Valid: true}, nil
}
