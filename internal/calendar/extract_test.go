package calendar

import (
	"testing"
	"time"
)

func TestPreviousWeek(t *testing.T) {
	// Wednesday 2025-03-12 → previous week is Mon 03/03 through Sun 03/09.
	now := time.Date(2025, time.March, 12, 15, 0, 0, 0, time.UTC)
	start, end := PreviousWeek(now)
	if start.Weekday() != time.Monday {
		t.Errorf("start weekday = %s, want Monday", start.Weekday())
	}
	if !start.Equal(time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %s", start)
	}
	if !end.Equal(time.Date(2025, time.March, 9, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("end = %s", end)
	}

	// A Monday still rolls back a full week.
	start, _ = PreviousWeek(time.Date(2025, time.March, 10, 0, 30, 0, 0, time.UTC))
	if !start.Equal(time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start from Monday = %s", start)
	}
}

func TestExtractResolvesClients(t *testing.T) {
	x := NewExtractor([]string{"Bob Smith", "Dale Scaiano", "Amy Lee"})
	events := []Event{
		{Title: "Session w/ Bob Smith", Start: time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)},
		{Title: "training", Description: "catch-up with dale", Start: time.Date(2025, time.March, 4, 10, 0, 0, 0, time.UTC)},
		{Title: "Dentist", Start: time.Date(2025, time.March, 5, 11, 0, 0, 0, time.UTC)},
	}
	sessions := x.Extract(events)
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2 (unresolved event dropped)", len(sessions))
	}
	if sessions[0].Client != "Bob Smith" {
		t.Errorf("sessions[0].Client = %q", sessions[0].Client)
	}
	if sessions[1].Client != "Dale Scaiano" {
		t.Errorf("sessions[1].Client = %q", sessions[1].Client)
	}
	if !sessions[0].Clock.Valid || sessions[0].Clock.Hour != 9 {
		t.Errorf("sessions[0].Clock = %+v", sessions[0].Clock)
	}
}

func TestExtractLongestSubstringWins(t *testing.T) {
	// "Bob Smithson" contains the token "bob" of both clients; the longer
	// whole-name match must win.
	x := NewExtractor([]string{"Bob", "Bob Smithson"})
	events := []Event{
		{Title: "Bob Smithson PT", Start: time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)},
	}
	sessions := x.Extract(events)
	if len(sessions) != 1 || sessions[0].Client != "Bob Smithson" {
		t.Fatalf("got %+v, want Bob Smithson", sessions)
	}
}

func TestExtractTitleBeatsDescription(t *testing.T) {
	x := NewExtractor([]string{"Bob Smith", "Amy Lee"})
	events := []Event{
		{Title: "Amy Lee", Description: "rescheduled from Bob Smith", Start: time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)},
	}
	sessions := x.Extract(events)
	if len(sessions) != 1 || sessions[0].Client != "Amy Lee" {
		t.Fatalf("title match should win, got %+v", sessions)
	}
}

func TestExtractAllDayEventHasNoClock(t *testing.T) {
	x := NewExtractor([]string{"Amy Lee"})
	sessions := x.Extract([]Event{
		{Title: "Amy Lee camp", Start: time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC), AllDay: true},
	})
	if len(sessions) != 1 || sessions[0].Clock.Valid {
		t.Fatalf("all-day event should have no clock: %+v", sessions)
	}
}
