// Package memory is an in-memory spreadsheet backend used by tests, demos
// and dry runs. It mirrors the positional semantics of the Google adapter:
// 1-based row indices, ragged rows, tabs in display order.
package memory

import (
	"context"
	"fmt"
	"sync"

	"ledgersync/internal/sheets"
)

type Store struct {
	mu     sync.Mutex
	order  []string
	tabs   map[string][][]string
	frozen map[string]int
}

var _ sheets.Spreadsheet = (*Store)(nil)

func New() *Store {
	return &Store{
		tabs:   map[string][][]string{},
		frozen: map[string]int{},
	}
}

// Seed creates a tab with the given rows, replacing any existing content.
func (s *Store) Seed(tab string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tabs[tab]; !ok {
		s.order = append(s.order, tab)
	}
	s.tabs[tab] = copyRows(rows)
}

// Rows returns a copy of a tab's content for assertions.
func (s *Store) Rows(tab string) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRows(s.tabs[tab])
}

// FrozenRows returns the frozen-row count recorded for a tab.
func (s *Store) FrozenRows(tab string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frozen[tab]
}

func (s *Store) ReadAll(_ context.Context, tab string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.tabs[tab]
	if !ok {
		return nil, fmt.Errorf("read %q: %w", tab, sheets.ErrTabNotFound)
	}
	return copyRows(rows), nil
}

func (s *Store) ListTabs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...), nil
}

func (s *Store) Update(_ context.Context, tab, startCell string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	grid, ok := s.tabs[tab]
	if !ok {
		return fmt.Errorf("update %q: %w", tab, sheets.ErrTabNotFound)
	}
	col, row, err := sheets.ParseA1(startCell)
	if err != nil {
		return err
	}
	for i, src := range rows {
		r := row - 1 + i
		for r >= len(grid) {
			grid = append(grid, nil)
		}
		line := grid[r]
		for j, v := range src {
			c := col - 1 + j
			for c >= len(line) {
				line = append(line, "")
			}
			line[c] = v
		}
		grid[r] = line
	}
	s.tabs[tab] = grid
	return nil
}

func (s *Store) Clear(_ context.Context, tab string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tabs[tab]; !ok {
		return fmt.Errorf("clear %q: %w", tab, sheets.ErrTabNotFound)
	}
	s.tabs[tab] = nil
	return nil
}

func (s *Store) InsertRowAt(_ context.Context, tab string, index int, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	grid, ok := s.tabs[tab]
	if !ok {
		return fmt.Errorf("insert into %q: %w", tab, sheets.ErrTabNotFound)
	}
	if index < 1 || index > len(grid)+1 {
		return fmt.Errorf("insert into %q: row %d out of range", tab, index)
	}
	row = append([]string(nil), row...)
	grid = append(grid, nil)
	copy(grid[index:], grid[index-1:])
	grid[index-1] = row
	s.tabs[tab] = grid
	return nil
}

func (s *Store) DeleteRowAt(_ context.Context, tab string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	grid, ok := s.tabs[tab]
	if !ok {
		return fmt.Errorf("delete from %q: %w", tab, sheets.ErrTabNotFound)
	}
	if index < 1 || index > len(grid) {
		return fmt.Errorf("delete from %q: row %d out of range", tab, index)
	}
	s.tabs[tab] = append(grid[:index-1], grid[index:]...)
	return nil
}

func (s *Store) CreateTab(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tabs[name]; ok {
		return fmt.Errorf("create %q: tab already exists", name)
	}
	s.tabs[name] = nil
	s.order = append(s.order, name)
	return nil
}

func (s *Store) DeleteTab(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tabs[name]; !ok {
		return fmt.Errorf("delete %q: %w", name, sheets.ErrTabNotFound)
	}
	delete(s.tabs, name)
	delete(s.frozen, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) ReorderTabs(_ context.Context, order []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var next []string
	for _, name := range order {
		if _, ok := s.tabs[name]; ok {
			next = append(next, name)
		}
	}
	for _, name := range s.order {
		if !contains(next, name) {
			next = append(next, name)
		}
	}
	s.order = next
	return nil
}

func (s *Store) FreezeRows(_ context.Context, tab string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tabs[tab]; !ok {
		return fmt.Errorf("freeze %q: %w", tab, sheets.ErrTabNotFound)
	}
	s.frozen[tab] = count
	return nil
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
