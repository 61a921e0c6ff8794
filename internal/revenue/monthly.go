// Package revenue computes per-month price totals over the ledger and
// writes them back at each month's boundary row.
package revenue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"ledgersync/internal/core"
	"ledgersync/internal/ledger"
	"ledgersync/internal/sheets"
)

// Buckets partitions ledger rows by (year, month) in a single forward pass.
// Rows arrive in ledger order, so each bucket's LastRowIndex is simply the
// last row seen before the month key changes. Placeholder and non-numeric
// prices contribute zero; they are logged, never fatal.
func Buckets(rows []core.LedgerRow) []core.MonthBucket {
	var (
		out     []core.MonthBucket
		current core.MonthBucket
		open    bool
	)
	flush := func() {
		if open {
			out = append(out, current)
			open = false
		}
	}
	for _, row := range rows {
		year, month := row.Date.Year(), row.Date.Month()
		if !open || year != current.Year || month != current.Month {
			flush()
			current = core.MonthBucket{Year: year, Month: month, Total: decimal.Zero}
			open = true
		}
		current.LastRowIndex = row.Index
		price, ok := core.ParsePrice(row.Price)
		if !ok {
			slog.Debug("Price not countable, contributing zero",
				"row", row.Index, "client", row.Client, "price", row.Price)
			continue
		}
		current.Total = current.Total.Add(price)
	}
	flush()
	return out
}

// Aggregator writes month totals into the ledger tab's MONTHLY CALC column.
type Aggregator struct {
	dst sheets.TabWriter
}

func NewAggregator(dst sheets.TabWriter) *Aggregator {
	return &Aggregator{dst: dst}
}

// WriteTotals computes the buckets for rows and writes each total into the
// designated column of the bucket's last row.
func (a *Aggregator) WriteTotals(ctx context.Context, tab string, rows []core.LedgerRow) ([]core.MonthBucket, error) {
	buckets := Buckets(rows)
	for _, b := range buckets {
		cell := fmt.Sprintf("%s%d", ledger.MonthlyCalcColumn, b.LastRowIndex)
		if err := a.dst.Update(ctx, tab, cell, [][]string{{core.FormatPrice(b.Total)}}); err != nil {
			return nil, fmt.Errorf("write %s %d total: %w", b.Month, b.Year, err)
		}
		slog.InfoContext(ctx, "Wrote monthly total",
			"year", b.Year, "month", b.Month.String(), "row", b.LastRowIndex, "total", b.Total.String())
	}
	return buckets, nil
}
