package storage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"ledgersync/internal/sheets"
)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ledgersync.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestCreateUpdateReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	if err := repo.CreateTab(ctx, "Ledger 2025"); err != nil {
		t.Fatalf("CreateTab: %v", err)
	}
	want := [][]string{
		{"DATE", "CLIENT NAME"},
		{"03/01/2025", "Smith"},
	}
	if err := repo.Update(ctx, "Ledger 2025", "A1", want); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.ReadAll(ctx, "Ledger 2025")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadAll = %v, want %v", got, want)
	}
}

func TestUpdateExtendsGridBeyondEnd(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	if err := repo.CreateTab(ctx, "T"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Update(ctx, "T", "G3", [][]string{{"$150"}}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	rows, err := repo.ReadAll(ctx, "T")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 3 || len(rows[2]) != 7 || rows[2][6] != "$150" {
		t.Errorf("grid = %v, want padding up to G3", rows)
	}
}

func TestInsertAndDeleteShiftRows(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	if err := repo.CreateTab(ctx, "T"); err != nil {
		t.Fatal(err)
	}
	seed := [][]string{{"a"}, {"b"}, {"c"}}
	if err := repo.Update(ctx, "T", "A1", seed); err != nil {
		t.Fatal(err)
	}

	if err := repo.InsertRowAt(ctx, "T", 2, []string{"x"}); err != nil {
		t.Fatalf("InsertRowAt: %v", err)
	}
	rows, _ := repo.ReadAll(ctx, "T")
	if got := flatten(rows); got != "a,x,b,c" {
		t.Errorf("after insert: %s", got)
	}

	if err := repo.DeleteRowAt(ctx, "T", 2); err != nil {
		t.Fatalf("DeleteRowAt: %v", err)
	}
	rows, _ = repo.ReadAll(ctx, "T")
	if got := flatten(rows); got != "a,b,c" {
		t.Errorf("after delete: %s", got)
	}

	if err := repo.InsertRowAt(ctx, "T", 9, []string{"y"}); err == nil {
		t.Error("out-of-range insert must fail")
	}
}

func TestTabLifecycleAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	for _, name := range []string{"Ledger 2025", "CLIENT LIST", "SESSIONS", "LAST WEEK"} {
		if err := repo.CreateTab(ctx, name); err != nil {
			t.Fatalf("CreateTab %q: %v", name, err)
		}
	}
	if err := repo.CreateTab(ctx, "SESSIONS"); err == nil {
		t.Error("duplicate CreateTab must fail")
	}

	if err := repo.ReorderTabs(ctx, []string{"Ledger 2025", "LAST WEEK", "SESSIONS", "CLIENT LIST"}); err != nil {
		t.Fatalf("ReorderTabs: %v", err)
	}
	tabs, err := repo.ListTabs(ctx)
	if err != nil {
		t.Fatalf("ListTabs: %v", err)
	}
	want := []string{"Ledger 2025", "LAST WEEK", "SESSIONS", "CLIENT LIST"}
	if !reflect.DeepEqual(tabs, want) {
		t.Errorf("tabs = %v, want %v", tabs, want)
	}

	if err := repo.DeleteTab(ctx, "SESSIONS"); err != nil {
		t.Fatalf("DeleteTab: %v", err)
	}
	if _, err := repo.ReadAll(ctx, "SESSIONS"); !errors.Is(err, sheets.ErrTabNotFound) {
		t.Errorf("deleted tab read error = %v, want ErrTabNotFound", err)
	}
}

func TestFreezeRows(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	if err := repo.CreateTab(ctx, "CLIENT LIST"); err != nil {
		t.Fatal(err)
	}
	if err := repo.FreezeRows(ctx, "CLIENT LIST", 1); err != nil {
		t.Fatalf("FreezeRows: %v", err)
	}
	count, err := repo.FrozenRows(ctx, "CLIENT LIST")
	if err != nil || count != 1 {
		t.Errorf("FrozenRows = %d, %v; want 1", count, err)
	}
	if err := repo.FreezeRows(ctx, "NOPE", 1); !errors.Is(err, sheets.ErrTabNotFound) {
		t.Errorf("freeze on missing tab = %v, want ErrTabNotFound", err)
	}
}

func TestContentSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "ledgersync.db")

	repo, err := NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	if err := repo.CreateTab(ctx, "Ledger 2025"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Update(ctx, "Ledger 2025", "A1", [][]string{{"03/01/2025", "Smith"}}); err != nil {
		t.Fatal(err)
	}
	repo.Close()

	repo, err = NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	rows, err := repo.ReadAll(ctx, "Ledger 2025")
	if err != nil {
		t.Fatalf("ReadAll after reopen: %v", err)
	}
	if len(rows) != 1 || rows[0][1] != "Smith" {
		t.Errorf("rows after reopen = %v", rows)
	}
}

func flatten(rows [][]string) string {
	var parts []string
	for _, r := range rows {
		parts = append(parts, r...)
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}
