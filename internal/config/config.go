package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Spreadsheet
	SpreadsheetID string
	// LedgerTabBase is the ledger tab name without the year suffix; the
	// effective tab is "<base> <year>".
	LedgerTabBase string
	LedgerYear    int

	// Calendar
	CalendarID string

	// Google OAuth (user token, as written by cmd/oauth-init)
	GoogleOAuthClientFile string
	GoogleOAuthTokenFile  string
	GoogleOAuthClientJSON string
	GoogleOAuthTokenJSON  string

	// Backend selection
	DataBackend string

	// SQLite backend
	SQLiteDBPath string

	// Tuning
	BackupChunkRows int
	// MatchDistanceRatio is the denominator of the edit-distance bound: a
	// PARTIAL match allows one edit per this many runes of the shorter name.
	MatchDistanceRatio int
	RetryAttempts      int
}

func Load() *Config {
	return &Config{
		SpreadsheetID: getEnv("SPREADSHEET_ID", ""),
		LedgerTabBase: getEnv("LEDGER_TAB_BASE", "Sales & Sessions Completed"),
		LedgerYear:    getEnvInt("LEDGER_YEAR", time.Now().Year()),

		CalendarID: getEnv("CALENDAR_ID", ""),

		GoogleOAuthClientFile: getEnv("GOOGLE_OAUTH_CLIENT_FILE", ""),
		GoogleOAuthTokenFile:  getEnv("GOOGLE_OAUTH_TOKEN_FILE", ""),
		GoogleOAuthClientJSON: getEnv("GOOGLE_OAUTH_CLIENT_JSON", ""),
		GoogleOAuthTokenJSON:  getEnv("GOOGLE_OAUTH_TOKEN_JSON", ""),

		DataBackend: getEnv("DATA_BACKEND", "memory"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ledgersync.db"),

		BackupChunkRows:    getEnvInt("BACKUP_CHUNK_ROWS", 1000),
		MatchDistanceRatio: getEnvInt("MATCH_DISTANCE_RATIO", 3),
		RetryAttempts:      getEnvInt("GOOGLE_RETRY_ATTEMPTS", 3),
	}
}

// LedgerTab returns the year-suffixed ledger tab name.
func (c *Config) LedgerTab() string {
	return fmt.Sprintf("%s %d", c.LedgerTabBase, c.LedgerYear)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	validBackends := []string{"memory", "sheets", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if strings.TrimSpace(c.LedgerTabBase) == "" {
		errs = append(errs, "ledger tab base name cannot be empty")
	}
	if c.LedgerYear < 2000 || c.LedgerYear > 2200 {
		errs = append(errs, fmt.Sprintf("invalid ledger year %d", c.LedgerYear))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.DataBackend == "sheets" {
		if c.SpreadsheetID == "" {
			errs = append(errs, "SPREADSHEET_ID is required when using sheets backend")
		}
		if c.CalendarID == "" {
			errs = append(errs, "CALENDAR_ID is required when using sheets backend")
		}

		hasClientFile := c.GoogleOAuthClientFile != ""
		hasClientJSON := c.GoogleOAuthClientJSON != ""
		if !hasClientFile && !hasClientJSON {
			errs = append(errs, "either GOOGLE_OAUTH_CLIENT_FILE or GOOGLE_OAUTH_CLIENT_JSON must be provided for sheets backend")
		}

		hasTokenFile := c.GoogleOAuthTokenFile != ""
		hasTokenJSON := c.GoogleOAuthTokenJSON != ""
		if !hasTokenFile && !hasTokenJSON {
			errs = append(errs, "either GOOGLE_OAUTH_TOKEN_FILE or GOOGLE_OAUTH_TOKEN_JSON must be provided for sheets backend")
		}

		if hasClientFile {
			if _, err := os.Stat(c.GoogleOAuthClientFile); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("Google OAuth client file does not exist: %s", c.GoogleOAuthClientFile))
			}
		}
		if hasTokenFile {
			if _, err := os.Stat(c.GoogleOAuthTokenFile); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("Google OAuth token file does not exist: %s", c.GoogleOAuthTokenFile))
			}
		}
	}

	if c.BackupChunkRows < 1 {
		errs = append(errs, fmt.Sprintf("invalid backup chunk size %d: must be at least 1", c.BackupChunkRows))
	} else if c.BackupChunkRows > 10000 {
		errs = append(errs, fmt.Sprintf("invalid backup chunk size %d: must be at most 10000", c.BackupChunkRows))
	}

	if c.MatchDistanceRatio < 1 {
		errs = append(errs, fmt.Sprintf("invalid match distance ratio %d: must be at least 1", c.MatchDistanceRatio))
	}

	if c.RetryAttempts < 0 || c.RetryAttempts > 10 {
		errs = append(errs, fmt.Sprintf("invalid retry attempts %d: must be between 0 and 10", c.RetryAttempts))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
