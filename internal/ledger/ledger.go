// Package ledger owns the in-memory snapshot of the ledger tab and every
// mutation of it: guarded insertion of unmatched sessions and backup
// rotation. The snapshot is an explicit state object passed through the
// pipeline; there is no process-wide ledger singleton.
package ledger

import (
	"context"
	"fmt"
	"strings"

	"ledgersync/internal/core"
	"ledgersync/internal/sheets"
)

// Headers expected in row 1 of the ledger tab, in column order. Read once
// and validated up front rather than probed ad hoc per lookup.
var headers = []string{
	"DATE",
	"CLIENT NAME",
	"INDIVIDUAL/GROUP",
	"SESSION #",
	"PRICE PER SESSION",
	"PAID?",
	"MONTHLY CALC",
	"NOTES",
}

const (
	colDate = iota
	colClient
	colSessionType
	colCount
	colPrice
	colDue
	colMonthlyCalc
	colNotes
)

// MonthlyCalcColumn is the A1 column letter of the MONTHLY CALC field, where
// month totals are written.
const MonthlyCalcColumn = "G"

// Headers returns the expected header row, for seeding fresh ledger tabs.
func Headers() []string { return append([]string(nil), headers...) }

// Ledger is the mutable snapshot of the ledger tab. Row order is
// non-decreasing by date; only insertion at an anchor may change it.
type Ledger struct {
	tab  string
	rows []core.LedgerRow
}

// Load reads and validates the ledger tab. Any unparseable date aborts the
// load: a ledger that cannot be ordered cannot be safely mutated.
func Load(ctx context.Context, src sheets.TabReader, tab string, year int) (*Ledger, error) {
	raw, err := src.ReadAll(ctx, tab)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	if len(raw) == 0 {
		return nil, &core.SchemaMismatchError{Tab: tab, Missing: headers}
	}
	if err := validateHeader(tab, raw[0]); err != nil {
		return nil, err
	}

	l := &Ledger{tab: tab}
	for i, cells := range raw[1:] {
		index := i + 2 // 1-based sheet row, after the header
		if isEmpty(cells) {
			continue
		}
		date, err := core.ParseDate(cell(cells, colDate), year)
		if err != nil {
			return nil, fmt.Errorf("ledger row %d: %w", index, err)
		}
		l.rows = append(l.rows, core.LedgerRow{
			Index:       index,
			Date:        date,
			Client:      strings.TrimSpace(cell(cells, colClient)),
			SessionType: cell(cells, colSessionType),
			CountLabel:  cell(cells, colCount),
			Price:       cell(cells, colPrice),
			DueStatus:   cell(cells, colDue),
			MonthlyCalc: cell(cells, colMonthlyCalc),
			StatusTag:   cell(cells, colNotes),
		})
	}
	return l, nil
}

func (l *Ledger) Tab() string { return l.tab }

// Rows returns a copy of the snapshot in ledger order.
func (l *Ledger) Rows() []core.LedgerRow {
	return append([]core.LedgerRow(nil), l.rows...)
}

// Len is the number of data rows.
func (l *Ledger) Len() int { return len(l.rows) }

// anchorIndex scans bottom-up for the last row dated date and returns its
// sheet row index, or 0 when no row shares the date.
func (l *Ledger) anchorIndex(date core.Date) int {
	for i := len(l.rows) - 1; i >= 0; i-- {
		if l.rows[i].Date.Equal(date.Time) {
			return l.rows[i].Index
		}
	}
	return 0
}

// insertAt writes row so it becomes sheet row index, then mirrors the
// mutation into the snapshot, shifting the indices below it.
func (l *Ledger) insertAt(ctx context.Context, dst sheets.TabWriter, index int, row core.LedgerRow) error {
	if err := dst.InsertRowAt(ctx, l.tab, index, rowCells(row)); err != nil {
		return fmt.Errorf("insert ledger row: %w", err)
	}
	row.Index = index
	pos := 0
	for pos < len(l.rows) && l.rows[pos].Index < index {
		pos++
	}
	l.rows = append(l.rows, core.LedgerRow{})
	copy(l.rows[pos+1:], l.rows[pos:])
	l.rows[pos] = row
	for i := pos + 1; i < len(l.rows); i++ {
		l.rows[i].Index++
	}
	return nil
}

// removeAt deletes sheet row index and shifts the snapshot back.
func (l *Ledger) removeAt(ctx context.Context, dst sheets.TabWriter, index int) error {
	if err := dst.DeleteRowAt(ctx, l.tab, index); err != nil {
		return fmt.Errorf("delete ledger row: %w", err)
	}
	for pos, row := range l.rows {
		if row.Index != index {
			continue
		}
		l.rows = append(l.rows[:pos], l.rows[pos+1:]...)
		for i := pos; i < len(l.rows); i++ {
			l.rows[i].Index--
		}
		return nil
	}
	return fmt.Errorf("delete ledger row: index %d not in snapshot", index)
}

func validateHeader(tab string, got []string) error {
	var missing []string
	for i, want := range headers {
		if i >= len(got) || !strings.EqualFold(strings.TrimSpace(got[i]), want) {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return &core.SchemaMismatchError{Tab: tab, Missing: missing}
	}
	return nil
}

func rowCells(row core.LedgerRow) []string {
	return []string{
		row.Date.Ledger(),
		row.Client,
		row.SessionType,
		row.CountLabel,
		row.Price,
		row.DueStatus,
		row.MonthlyCalc,
		row.StatusTag,
	}
}

func cell(cells []string, i int) string {
	if i >= len(cells) {
		return ""
	}
	return cells[i]
}

func isEmpty(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
