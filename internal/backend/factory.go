// Package backend selects and builds the spreadsheet backend the run works
// against: the live Google workbook, a SQLite mirror, or an in-memory store.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"ledgersync/internal/config"
	"ledgersync/internal/googleauth"
	"ledgersync/internal/ledger"
	"ledgersync/internal/sheets"
	gsheet "ledgersync/internal/sheets/google"
	"ledgersync/internal/sheets/memory"
	"ledgersync/internal/storage"
)

type Type string

const (
	SQLiteBackend Type = "sqlite"
	SheetsBackend Type = "sheets"
	MemoryBackend Type = "memory"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases backend resources once the run is over.
type CleanupFunc func() error

// Result holds the backend instance and its optional cleanup.
type Result struct {
	Spreadsheet sheets.Spreadsheet
	Cleanup     CleanupFunc
}

type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create builds the spreadsheet backend named by cfg.DataBackend.
func (f *Factory) Create(ctx context.Context, cfg *config.Config) (*Result, error) {
	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch t {
	case SQLiteBackend:
		return f.createSQLite(cfg)
	case SheetsBackend:
		return f.createSheets(ctx, cfg)
	default:
		return f.createMemory(cfg)
	}
}

func (f *Factory) createSQLite(cfg *config.Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)

	return &Result{Spreadsheet: repo, Cleanup: repo.Close}, nil
}

func (f *Factory) createSheets(ctx context.Context, cfg *config.Config) (*Result, error) {
	httpClient, err := googleauth.Credentials{
		ClientFile: cfg.GoogleOAuthClientFile,
		ClientJSON: cfg.GoogleOAuthClientJSON,
		TokenFile:  cfg.GoogleOAuthTokenFile,
		TokenJSON:  cfg.GoogleOAuthTokenJSON,
	}.Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize Google credentials: %w", err)
	}

	cli, err := gsheet.New(ctx, httpClient, cfg.SpreadsheetID, cfg.RetryAttempts)
	if err != nil {
		return nil, fmt.Errorf("initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", cfg.SpreadsheetID)

	return &Result{Spreadsheet: cli}, nil
}

func (f *Factory) createMemory(cfg *config.Config) (*Result, error) {
	store := memory.New()
	store.Seed(cfg.LedgerTab(), [][]string{ledger.Headers()})

	f.logger.Info("Initialized memory backend", "ledger_tab", cfg.LedgerTab())

	return &Result{Spreadsheet: store}, nil
}
