package reconcile

import (
	"reflect"
	"testing"
	"time"

	"ledgersync/internal/core"
	"ledgersync/internal/match"
)

func newEngine() *Engine { return NewEngine(match.New(match.DefaultRatio)) }

func TestReconcilePartialNameSameDate(t *testing.T) {
	// Calendar says "Bob Smith", the ledger row just says "Smith".
	rows := []core.LedgerRow{
		{Index: 2, Date: core.NewDate(2025, time.March, 1), Client: "Smith"},
	}
	sessions := []core.Session{
		{Client: "Bob Smith", Date: core.NewDate(2025, time.March, 1), Source: core.SourceCalendar},
	}
	results := newEngine().Reconcile(sessions, rows)
	if len(results) != 1 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Status != core.StatusMatch || results[0].Row == nil || results[0].Row.Index != 2 {
		t.Errorf("expected MATCH bound to row 2, got %+v", results[0])
	}
}

func TestReconcileRequiresExactDate(t *testing.T) {
	rows := []core.LedgerRow{
		{Index: 2, Date: core.NewDate(2025, time.March, 1), Client: "Smith"},
	}
	sessions := []core.Session{
		{Client: "Smith", Date: core.NewDate(2025, time.March, 2), Source: core.SourceCalendar},
	}
	results := newEngine().Reconcile(sessions, rows)
	if results[0].Status != core.StatusNoMatch || results[0].Row != nil {
		t.Errorf("same name on a different date must be NO MATCH, got %+v", results[0])
	}
}

func TestReconcileIsDeterministic(t *testing.T) {
	date := core.NewDate(2025, time.March, 1)
	rows := []core.LedgerRow{
		{Index: 2, Date: date, Client: "Bob Smoth"},
		{Index: 3, Date: date, Client: "Smith"},
		{Index: 4, Date: date, Client: "Bob Smith"},
		{Index: 5, Date: date, Client: "Roberta Smith"},
	}
	sessions := []core.Session{
		{Client: "Bob Smith", Date: date, Source: core.SourceCalendar},
		{Client: "Smith", Date: date, Source: core.SourceCalendar},
		{Client: "Nobody", Date: date, Source: core.SourceCalendar},
	}
	e := newEngine()
	first := e.Reconcile(sessions, rows)
	for run := 0; run < 10; run++ {
		if again := e.Reconcile(sessions, rows); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced different results", run)
		}
	}
	if first[0].Row.Index != 4 {
		t.Errorf("exact candidate should win, got row %d", first[0].Row.Index)
	}
	if first[2].Status != core.StatusNoMatch {
		t.Errorf("unknown client should be NO MATCH")
	}
}
