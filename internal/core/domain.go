package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	SourceCalendar Source = "calendar"
	SourceLedger   Source = "ledger"
)

const (
	StatusMatch   MatchStatus = "MATCH"
	StatusNoMatch MatchStatus = "NO MATCH"
)

type (
	Source      string
	MatchStatus string

	// Date is a calendar date without a time component, normalized to UTC.
	Date struct {
		time.Time
	}

	// Clock is an optional time of day attached to a Session.
	Clock struct {
		Hour   int
		Minute int
		Valid  bool
	}

	// Session is one scheduled or completed client meeting. Immutable once built.
	Session struct {
		Client string
		Date   Date
		Clock  Clock
		Source Source
	}

	// LedgerRow is one record of the ledger tab. Index is the 1-based sheet
	// row; the header occupies row 1, so data rows start at 2.
	LedgerRow struct {
		Index       int
		Date        Date
		Client      string
		SessionType string
		CountLabel  string
		Price       string
		DueStatus   string
		MonthlyCalc string
		StatusTag   string
	}

	// ClientTally is the per-client session count derived from a row scan.
	// Recomputed every run, never persisted outside the tab it is written to.
	ClientTally struct {
		Client   string
		Sessions int
		Dates    []Date
	}

	// MatchResult binds a calendar Session to its ledger counterpart, if any.
	// Row is a lookup reference only; the ledger owns the row's lifecycle.
	MatchResult struct {
		Session Session
		Row     *LedgerRow
		Status  MatchStatus
	}

	// MonthBucket is one month's slice of the ledger: the highest row index
	// belonging to the month and the sum of parseable prices in it.
	MonthBucket struct {
		Year         int
		Month        time.Month
		LastRowIndex int
		Total        decimal.Decimal
	}
)

var (
	ErrEmptyClient   = errors.New("empty client name")
	ErrInvalidSource = errors.New("invalid session source")
)

// NewDate creates a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ClockOf extracts the time of day from a timestamp.
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute(), Valid: true}
}

// Ledger formats the date the way the ledger's DATE column stores it.
func (d Date) Ledger() string {
	return d.Format("01/02/2006")
}

// ShortWeekday formats the date for the report tabs, e.g. "Mon 01/02".
func (d Date) ShortWeekday() string {
	return d.Format("Mon 01/02")
}

func (d Date) String() string { return d.Ledger() }

// SameMonth reports whether both dates fall in the same year and month.
func (d Date) SameMonth(o Date) bool {
	return d.Year() == o.Year() && d.Month() == o.Month()
}

func (c Clock) String() string {
	if !c.Valid {
		return ""
	}
	t := time.Date(0, time.January, 1, c.Hour, c.Minute, 0, 0, time.UTC)
	return t.Format("03:04 PM")
}

func (s Session) Validate() error {
	if strings.TrimSpace(s.Client) == "" {
		return ErrEmptyClient
	}
	if s.Date.IsZero() {
		return errors.New("session date cannot be zero")
	}
	switch s.Source {
	case SourceCalendar, SourceLedger:
	default:
		return ErrInvalidSource
	}
	return nil
}

// When orders sessions chronologically: by date, then by clock where present.
func (s Session) When() time.Time {
	t := s.Date.Time
	if s.Clock.Valid {
		t = t.Add(time.Duration(s.Clock.Hour)*time.Hour + time.Duration(s.Clock.Minute)*time.Minute)
	}
	return t
}

// MalformedDateError reports a date or time string no known pattern matches.
type MalformedDateError struct {
	Input string
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("malformed date %q", e.Input)
}

// NoAnchorDateError reports that no ledger row shares an unmatched session's
// date, so an insertion point cannot be determined.
type NoAnchorDateError struct {
	Client string
	Date   Date
}

func (e *NoAnchorDateError) Error() string {
	return fmt.Sprintf("no ledger row dated %s to anchor insertion for %q", e.Date, e.Client)
}

// SchemaMismatchError reports that a tab's header row is missing expected
// columns.
type SchemaMismatchError struct {
	Tab     string
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("tab %q: missing expected headers %s", e.Tab, strings.Join(e.Missing, ", "))
}
