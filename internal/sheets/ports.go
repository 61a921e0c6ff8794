package sheets

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrTabNotFound reports a named tab the spreadsheet does not contain.
	ErrTabNotFound = errors.New("tab not found")
	// ErrUnauthorized reports that the backend rejected our credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// TransientError wraps a retryable transfer failure. The Google adapter
// retries these internally; surviving ones are fatal to the run.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("transient %s failure: %v", e.Op, e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// Ports for spreadsheet backends. All row and tab indices are 1-based, as in
// the sheet UI. Cell values travel as text; parsing is the caller's concern.
type (
	TabReader interface {
		// ReadAll returns every row of a tab in order. Trailing empty
		// cells may be absent, so rows are ragged.
		ReadAll(ctx context.Context, tab string) ([][]string, error)
		// ListTabs returns tab names in display order.
		ListTabs(ctx context.Context) ([]string, error)
	}

	TabWriter interface {
		// Update writes rows starting at startCell (A1 notation).
		Update(ctx context.Context, tab, startCell string, rows [][]string) error
		// Clear empties a tab without deleting it.
		Clear(ctx context.Context, tab string) error
		// InsertRowAt inserts row so that it becomes row index,
		// shifting that row and everything below down by one.
		InsertRowAt(ctx context.Context, tab string, index int, row []string) error
		// DeleteRowAt removes row index, shifting rows below up by one.
		DeleteRowAt(ctx context.Context, tab string, index int) error
	}

	TabAdmin interface {
		CreateTab(ctx context.Context, name string) error
		DeleteTab(ctx context.Context, name string) error
		// ReorderTabs moves the named tabs to the front in the given
		// order; unnamed tabs keep their relative order after them.
		ReorderTabs(ctx context.Context, order []string) error
		FreezeRows(ctx context.Context, tab string, count int) error
	}

	// Spreadsheet is the full surface the pipeline needs.
	Spreadsheet interface {
		TabReader
		TabWriter
		TabAdmin
	}
)
