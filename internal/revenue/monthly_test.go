package revenue

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ledgersync/internal/core"
	"ledgersync/internal/sheets/memory"
)

func row(index int, month time.Month, day int, client, price string) core.LedgerRow {
	return core.LedgerRow{
		Index:  index,
		Date:   core.NewDate(2025, month, day),
		Client: client,
		Price:  price,
	}
}

func TestBucketsSplitOnMonthBoundary(t *testing.T) {
	buckets := Buckets([]core.LedgerRow{
		row(2, time.March, 1, "Smith", "$100"),
		row(3, time.March, 15, "Jones", "$50"),
		row(4, time.April, 2, "Lee", "$75"),
	})
	if len(buckets) != 2 {
		t.Fatalf("got %d buckets, want 2", len(buckets))
	}
	march, april := buckets[0], buckets[1]
	if march.Month != time.March || march.LastRowIndex != 3 || !march.Total.Equal(decimal.NewFromInt(150)) {
		t.Errorf("march = %+v", march)
	}
	if april.Month != time.April || april.LastRowIndex != 4 || !april.Total.Equal(decimal.NewFromInt(75)) {
		t.Errorf("april = %+v", april)
	}
}

func TestBucketsSplitOnYearChange(t *testing.T) {
	dec := core.LedgerRow{Index: 2, Date: core.NewDate(2024, time.December, 30), Client: "Smith", Price: "$10"}
	jan := core.LedgerRow{Index: 3, Date: core.NewDate(2025, time.January, 2), Client: "Smith", Price: "$20"}
	buckets := Buckets([]core.LedgerRow{dec, jan})
	if len(buckets) != 2 {
		t.Fatalf("year rollover must open a new bucket; got %d", len(buckets))
	}
	if buckets[0].Year != 2024 || buckets[1].Year != 2025 {
		t.Errorf("years = %d, %d", buckets[0].Year, buckets[1].Year)
	}
}

func TestBucketsPlaceholdersContributeZero(t *testing.T) {
	buckets := Buckets([]core.LedgerRow{
		row(2, time.March, 1, "Smith", "$100"),
		row(3, time.March, 2, "Jones", "$XXX"),
		row(4, time.March, 3, "Lee", "due???"),
	})
	if len(buckets) != 1 {
		t.Fatalf("got %d buckets, want 1", len(buckets))
	}
	if !buckets[0].Total.Equal(decimal.NewFromInt(100)) {
		t.Errorf("total = %s, want $100 with placeholders skipped", buckets[0].Total)
	}
	if buckets[0].LastRowIndex != 4 {
		t.Errorf("placeholder rows still advance the boundary; last = %d", buckets[0].LastRowIndex)
	}
}

func TestBucketsEmpty(t *testing.T) {
	if got := Buckets(nil); got != nil {
		t.Errorf("no rows, no buckets; got %v", got)
	}
}

func TestWriteTotalsTargetsLastRowOfEachMonth(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Seed("Ledger 2025", [][]string{
		{"DATE", "CLIENT NAME", "INDIVIDUAL/GROUP", "SESSION #", "PRICE PER SESSION", "PAID?", "MONTHLY CALC", "NOTES"},
		{"03/01/2025", "Smith", "", "", "$100", "", "", ""},
		{"03/15/2025", "Jones", "", "", "$50", "", "", ""},
		{"04/02/2025", "Lee", "", "", "$75", "", "", ""},
	})

	agg := NewAggregator(store)
	buckets, err := agg.WriteTotals(ctx, "Ledger 2025", []core.LedgerRow{
		row(2, time.March, 1, "Smith", "$100"),
		row(3, time.March, 15, "Jones", "$50"),
		row(4, time.April, 2, "Lee", "$75"),
	})
	if err != nil {
		t.Fatalf("WriteTotals: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("got %d buckets", len(buckets))
	}

	rows := store.Rows("Ledger 2025")
	if got := rows[2][6]; got != "$150" {
		t.Errorf("MONTHLY CALC at March boundary = %q, want $150", got)
	}
	if got := rows[3][6]; got != "$75" {
		t.Errorf("MONTHLY CALC at April boundary = %q, want $75", got)
	}
	if got := rows[1][6]; got != "" {
		t.Errorf("non-boundary row must stay untouched, got %q", got)
	}
}
