// Package storage is a SQLite-backed spreadsheet: tabs and rows live in two
// tables, and the full sheets.Spreadsheet surface works against them. It keeps
// a local mirror of the ledger workbook for offline runs and rehearsals.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ledgersync/internal/sheets"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ sheets.Spreadsheet = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) ReadAll(ctx context.Context, tab string) ([][]string, error) {
	var grid [][]string
	err := r.withTab(ctx, tab, func(tx *sql.Tx) error {
		var err error
		grid, err = readGrid(ctx, tx, tab)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", tab, err)
	}
	return grid, nil
}

func (r *SQLiteRepository) ListTabs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM tabs ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list tabs: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *SQLiteRepository) Update(ctx context.Context, tab, startCell string, rows [][]string) error {
	col, row, err := sheets.ParseA1(startCell)
	if err != nil {
		return fmt.Errorf("update %q: %w", tab, err)
	}
	return r.mutateGrid(ctx, tab, "update", func(grid [][]string) ([][]string, error) {
		for i, src := range rows {
			ri := row - 1 + i
			for ri >= len(grid) {
				grid = append(grid, nil)
			}
			line := grid[ri]
			for j, v := range src {
				ci := col - 1 + j
				for ci >= len(line) {
					line = append(line, "")
				}
				line[ci] = v
			}
			grid[ri] = line
		}
		return grid, nil
	})
}

func (r *SQLiteRepository) Clear(ctx context.Context, tab string) error {
	return r.mutateGrid(ctx, tab, "clear", func([][]string) ([][]string, error) {
		return nil, nil
	})
}

func (r *SQLiteRepository) InsertRowAt(ctx context.Context, tab string, index int, row []string) error {
	return r.mutateGrid(ctx, tab, "insert into", func(grid [][]string) ([][]string, error) {
		if index < 1 || index > len(grid)+1 {
			return nil, fmt.Errorf("row %d out of range", index)
		}
		grid = append(grid, nil)
		copy(grid[index:], grid[index-1:])
		grid[index-1] = append([]string(nil), row...)
		return grid, nil
	})
}

func (r *SQLiteRepository) DeleteRowAt(ctx context.Context, tab string, index int) error {
	return r.mutateGrid(ctx, tab, "delete from", func(grid [][]string) ([][]string, error) {
		if index < 1 || index > len(grid) {
			return nil, fmt.Errorf("row %d out of range", index)
		}
		return append(grid[:index-1], grid[index:]...), nil
	})
}

func (r *SQLiteRepository) CreateTab(ctx context.Context, name string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		exists, err := tabExists(ctx, tx, name)
		if err != nil {
			return fmt.Errorf("create %q: %w", name, err)
		}
		if exists {
			return fmt.Errorf("create %q: tab already exists", name)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO tabs (name, position) VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM tabs))`,
			name)
		if err != nil {
			return fmt.Errorf("create %q: %w", name, err)
		}
		return nil
	})
}

func (r *SQLiteRepository) DeleteTab(ctx context.Context, name string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM tabs WHERE name = ?`, name)
		if err != nil {
			return fmt.Errorf("delete %q: %w", name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete %q: %w", name, err)
		}
		if n == 0 {
			return fmt.Errorf("delete %q: %w", name, sheets.ErrTabNotFound)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM tab_rows WHERE tab = ?`, name); err != nil {
			return fmt.Errorf("delete %q: %w", name, err)
		}
		return nil
	})
}

func (r *SQLiteRepository) ReorderTabs(ctx context.Context, order []string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT name FROM tabs ORDER BY position`)
		if err != nil {
			return fmt.Errorf("reorder tabs: %w", err)
		}
		current := map[string]bool{}
		var existing []string
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				rows.Close()
				return fmt.Errorf("reorder tabs: %w", err)
			}
			current[name] = true
			existing = append(existing, name)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("reorder tabs: %w", err)
		}

		var next []string
		named := map[string]bool{}
		for _, name := range order {
			if current[name] && !named[name] {
				next = append(next, name)
				named[name] = true
			}
		}
		for _, name := range existing {
			if !named[name] {
				next = append(next, name)
			}
		}
		for i, name := range next {
			if _, err := tx.ExecContext(ctx, `UPDATE tabs SET position = ? WHERE name = ?`, i+1, name); err != nil {
				return fmt.Errorf("reorder tabs: %w", err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) FreezeRows(ctx context.Context, tab string, count int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tabs SET frozen_rows = ? WHERE name = ?`, count, tab)
	if err != nil {
		return fmt.Errorf("freeze %q: %w", tab, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("freeze %q: %w", tab, err)
	}
	if n == 0 {
		return fmt.Errorf("freeze %q: %w", tab, sheets.ErrTabNotFound)
	}
	return nil
}

// FrozenRows returns the frozen-row count recorded for a tab.
func (r *SQLiteRepository) FrozenRows(ctx context.Context, tab string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT frozen_rows FROM tabs WHERE name = ?`, tab).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("frozen rows %q: %w", tab, sheets.ErrTabNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("frozen rows %q: %w", tab, err)
	}
	return count, nil
}

// mutateGrid applies fn to a tab's full grid inside one transaction. Row
// mutations are rare and tabs are small, so rewriting the tab beats keeping
// shift logic in SQL.
func (r *SQLiteRepository) mutateGrid(ctx context.Context, tab, op string, fn func([][]string) ([][]string, error)) error {
	err := r.withTab(ctx, tab, func(tx *sql.Tx) error {
		grid, err := readGrid(ctx, tx, tab)
		if err != nil {
			return err
		}
		grid, err = fn(grid)
		if err != nil {
			return err
		}
		return writeGrid(ctx, tx, tab, grid)
	})
	if err != nil {
		return fmt.Errorf("%s %q: %w", op, tab, err)
	}
	return nil
}

func (r *SQLiteRepository) withTab(ctx context.Context, tab string, fn func(*sql.Tx) error) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		exists, err := tabExists(ctx, tx, tab)
		if err != nil {
			return err
		}
		if !exists {
			return sheets.ErrTabNotFound
		}
		return fn(tx)
	})
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func tabExists(ctx context.Context, tx *sql.Tx, name string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM tabs WHERE name = ?`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func readGrid(ctx context.Context, tx *sql.Tx, tab string) ([][]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT cells FROM tab_rows WHERE tab = ? ORDER BY position`, tab)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grid [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		grid = append(grid, cells)
	}
	return grid, rows.Err()
}

func writeGrid(ctx context.Context, tx *sql.Tx, tab string, grid [][]string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM tab_rows WHERE tab = ?`, tab); err != nil {
		return err
	}
	for i, cells := range grid {
		if cells == nil {
			cells = []string{}
		}
		raw, err := json.Marshal(cells)
		if err != nil {
			return fmt.Errorf("encode row %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tab_rows (tab, position, cells) VALUES (?, ?, ?)`,
			tab, i+1, string(raw)); err != nil {
			return err
		}
	}
	return nil
}
