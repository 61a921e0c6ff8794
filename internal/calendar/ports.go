// Package calendar fetches raw calendar events and normalizes them into
// session records for the reconciliation engine.
package calendar

import (
	"context"
	"time"
)

// Event is a raw calendar event. Start carries the event's local start time;
// AllDay events have a date but no meaningful clock.
type Event struct {
	Title       string
	Description string
	Start       time.Time
	AllDay      bool
}

// EventSource lists events in a window, ordered by start time.
type EventSource interface {
	Events(ctx context.Context, calendarID string, from, to time.Time) ([]Event, error)
}

// PreviousWeek returns the Monday 00:00 and Sunday 23:59:59 bounds of the
// week before the one containing now.
func PreviousWeek(now time.Time) (time.Time, time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	sinceMonday := (int(today.Weekday()) + 6) % 7
	start := today.AddDate(0, 0, -(sinceMonday + 7))
	end := start.AddDate(0, 0, 7).Add(-time.Second)
	return start, end
}
