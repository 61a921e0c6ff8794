package main

import (
	"flag"
	"os"

	"ledgersync/internal/backend"
	"ledgersync/internal/calendar"
	"ledgersync/internal/cli"
	"ledgersync/internal/googleauth"
	"ledgersync/internal/services"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "run against the local backend instead of Google Sheets")
	yes := flag.Bool("yes", false, "accept every unmatched-session insertion without prompting")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	if *dryRun && cfg.DataBackend == backend.SheetsBackend.String() {
		cfg.DataBackend = backend.MemoryBackend.String()
		logger.Info("Dry run: using memory backend instead of Google Sheets")
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	result, err := backend.NewFactory(logger).Create(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}
	}()

	var events calendar.EventSource
	if cfg.DataBackend == backend.SheetsBackend.String() {
		httpClient, err := googleauth.Credentials{
			ClientFile: cfg.GoogleOAuthClientFile,
			ClientJSON: cfg.GoogleOAuthClientJSON,
			TokenFile:  cfg.GoogleOAuthTokenFile,
			TokenJSON:  cfg.GoogleOAuthTokenJSON,
		}.Client(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google credentials", "error", err)
			os.Exit(1)
		}
		events, err = calendar.NewGoogleSource(ctx, httpClient)
		if err != nil {
			logger.Error("Failed to initialize Google Calendar client", "error", err)
			os.Exit(1)
		}
	} else {
		// Local backends have no calendar behind them; the run still
		// rebuilds the report tabs and monthly totals from the ledger.
		events = calendar.NewMemorySource()
	}

	logger.Info("Starting reconciliation run",
		"ledger_tab", cfg.LedgerTab(), "backend", cfg.DataBackend, "auto_accept", *yes)

	runner := services.NewRunner(cfg, result.Spreadsheet, events, os.Stdin, os.Stdout)
	report, err := runner.Run(ctx, *yes)
	if err != nil {
		logger.Error("Run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Run finished",
		"backup_tab", report.BackupTab,
		"sessions", len(report.Sessions),
		"inserted", len(report.Outcome.Inserted),
		"rejected", len(report.Outcome.Rejected),
		"no_anchor", len(report.Outcome.NoAnchor),
		"skipped", len(report.Outcome.Skipped),
		"months", len(report.Buckets))
}
