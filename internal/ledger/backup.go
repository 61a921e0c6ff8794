package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ledgersync/internal/sheets"
)

const backupPrefix = "BACKUP_"

// BackupManager rotates the ledger's backup tab: at rest there is at most
// one backup, and a new one is fully written before the run touches the
// ledger. Any failure here aborts the run ahead of mutation.
type BackupManager struct {
	ss        sheets.Spreadsheet
	chunkRows int
	now       func() time.Time
}

func NewBackupManager(ss sheets.Spreadsheet, chunkRows int) *BackupManager {
	if chunkRows < 1 {
		chunkRows = 1000
	}
	return &BackupManager{ss: ss, chunkRows: chunkRows, now: time.Now}
}

// Rotate deletes every existing backup of tab, then copies tab into a fresh
// timestamp-named backup in bounded chunks. Returns the new backup's name.
func (b *BackupManager) Rotate(ctx context.Context, tab string) (string, error) {
	prefix := backupPrefix + tab
	tabs, err := b.ss.ListTabs(ctx)
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	for _, name := range tabs {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if err := b.ss.DeleteTab(ctx, name); err != nil {
			return "", fmt.Errorf("backup: delete stale %q: %w", name, err)
		}
		slog.InfoContext(ctx, "Deleted existing backup", "tab", name)
	}

	rows, err := b.ss.ReadAll(ctx, tab)
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}

	name := fmt.Sprintf("%s_%s", prefix, b.now().Format("20060102_150405"))
	if err := b.ss.CreateTab(ctx, name); err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	for start := 0; start < len(rows); start += b.chunkRows {
		end := start + b.chunkRows
		if end > len(rows) {
			end = len(rows)
		}
		if err := b.ss.Update(ctx, name, fmt.Sprintf("A%d", start+1), rows[start:end]); err != nil {
			return "", fmt.Errorf("backup: copy rows %d-%d: %w", start+1, end, err)
		}
	}
	slog.InfoContext(ctx, "Backup created", "tab", name, "rows", len(rows))
	return name, nil
}
