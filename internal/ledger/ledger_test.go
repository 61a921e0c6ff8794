package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"ledgersync/internal/core"
	"ledgersync/internal/sheets/memory"
)

var header = []string{"DATE", "CLIENT NAME", "INDIVIDUAL/GROUP", "SESSION #", "PRICE PER SESSION", "PAID?", "MONTHLY CALC", "NOTES"}

func seedLedger(t *testing.T, rows ...[]string) (*memory.Store, *Ledger) {
	t.Helper()
	store := memory.New()
	store.Seed("Ledger 2025", append([][]string{header}, rows...))
	l, err := Load(context.Background(), store, "Ledger 2025", 2025)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return store, l
}

func TestLoadParsesRows(t *testing.T) {
	_, l := seedLedger(t,
		[]string{"03/01/2025", "Smith", "Individual", "1 of 10", "$100", "PAID", "", ""},
		[]string{"03/15/2025", "Jones", "Individual", "2 of 10", "$50", "PAID", "", ""},
	)
	rows := l.Rows()
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0].Index != 2 || rows[1].Index != 3 {
		t.Errorf("indices = %d, %d; want 2, 3", rows[0].Index, rows[1].Index)
	}
	if rows[0].Client != "Smith" || rows[0].Price != "$100" {
		t.Errorf("row 2 parsed wrong: %+v", rows[0])
	}
	if !rows[1].Date.Equal(core.NewDate(2025, time.March, 15).Time) {
		t.Errorf("row 3 date = %s", rows[1].Date)
	}
}

func TestLoadSkipsBlankRows(t *testing.T) {
	_, l := seedLedger(t,
		[]string{"03/01/2025", "Smith", "", "", "$100", "", "", ""},
		[]string{},
		[]string{"", "", ""},
		[]string{"03/02/2025", "Jones", "", "", "$50", "", "", ""},
	)
	rows := l.Rows()
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want blank rows skipped", len(rows))
	}
	if rows[1].Index != 5 {
		t.Errorf("second data row keeps its sheet index 5, got %d", rows[1].Index)
	}
}

func TestLoadRejectsBadHeader(t *testing.T) {
	store := memory.New()
	store.Seed("Ledger 2025", [][]string{{"WHEN", "WHO"}})
	_, err := Load(context.Background(), store, "Ledger 2025", 2025)
	var sme *core.SchemaMismatchError
	if !errors.As(err, &sme) {
		t.Fatalf("error = %v, want SchemaMismatchError", err)
	}
}

func TestLoadAbortsOnMalformedDate(t *testing.T) {
	store := memory.New()
	store.Seed("Ledger 2025", [][]string{
		header,
		{"once upon a time", "Smith", "", "", "$100", "", "", ""},
	})
	_, err := Load(context.Background(), store, "Ledger 2025", 2025)
	var mde *core.MalformedDateError
	if !errors.As(err, &mde) {
		t.Fatalf("error = %v, want MalformedDateError", err)
	}
}

func TestAnchorIndexScansBottomUp(t *testing.T) {
	_, l := seedLedger(t,
		[]string{"03/01/2025", "Smith", "", "", "$100", "", "", ""},
		[]string{"03/01/2025", "Jones", "", "", "$50", "", "", ""},
		[]string{"03/02/2025", "Lee", "", "", "$75", "", "", ""},
	)
	if got := l.anchorIndex(core.NewDate(2025, time.March, 1)); got != 3 {
		t.Errorf("anchorIndex(03/01) = %d, want last matching row 3", got)
	}
	if got := l.anchorIndex(core.NewDate(2025, time.April, 1)); got != 0 {
		t.Errorf("anchorIndex(04/01) = %d, want 0", got)
	}
}
