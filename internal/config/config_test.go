package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		LedgerTabBase:      "Sales & Sessions Completed",
		LedgerYear:         2025,
		DataBackend:        "memory",
		SQLiteDBPath:       "./data/test.db",
		BackupChunkRows:    1000,
		MatchDistanceRatio: 3,
		RetryAttempts:      3,
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config should pass: %v", err)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := validConfig()
	cfg.DataBackend = "postgres"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "invalid data backend") {
		t.Errorf("expected backend validation error, got %v", err)
	}
}

func TestValidateSheetsBackendRequiresIdentifiers(t *testing.T) {
	cfg := validConfig()
	cfg.DataBackend = "sheets"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("sheets backend without credentials should fail validation")
	}
	for _, want := range []string{"SPREADSHEET_ID", "CALENDAR_ID", "GOOGLE_OAUTH_CLIENT_FILE", "GOOGLE_OAUTH_TOKEN_FILE"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("validation error should mention %s; got:\n%v", want, err)
		}
	}
}

func TestValidateTuning(t *testing.T) {
	cfg := validConfig()
	cfg.BackupChunkRows = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero chunk size should fail")
	}

	cfg = validConfig()
	cfg.MatchDistanceRatio = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero distance ratio should fail")
	}
}

func TestLedgerTab(t *testing.T) {
	cfg := validConfig()
	if got := cfg.LedgerTab(); got != "Sales & Sessions Completed 2025" {
		t.Errorf("LedgerTab() = %q", got)
	}
}
