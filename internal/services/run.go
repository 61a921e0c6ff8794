// Package services orchestrates the weekly reconciliation run: backup, the
// two external reads, matching, report tabs, guarded insertion, monthly
// totals and the final tab shuffle. Every step after the reads is strictly
// sequential; the spreadsheet is mutated by exactly one goroutine.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"ledgersync/internal/calendar"
	"ledgersync/internal/config"
	"ledgersync/internal/core"
	"ledgersync/internal/ledger"
	"ledgersync/internal/match"
	"ledgersync/internal/reconcile"
	"ledgersync/internal/revenue"
	"ledgersync/internal/sheets"
)

// Report tab names. The ledger tab itself is configured; these are fixed.
const (
	TabClientList = "CLIENT LIST"
	TabLastWeek   = "LAST WEEK"
	TabSessions   = "SESSIONS"
)

// Report summarizes one run for the caller.
type Report struct {
	BackupTab string
	Sessions  []core.Session
	Matches   []core.MatchResult
	Outcome   ledger.Outcome
	Buckets   []core.MonthBucket
}

// Runner wires one run's collaborators. Operator input and output are
// injected so the interactive insertion can be scripted in tests.
type Runner struct {
	cfg    *config.Config
	ss     sheets.Spreadsheet
	events calendar.EventSource
	in     io.Reader
	out    io.Writer
	now    func() time.Time
}

func NewRunner(cfg *config.Config, ss sheets.Spreadsheet, events calendar.EventSource, in io.Reader, out io.Writer) *Runner {
	return &Runner{cfg: cfg, ss: ss, events: events, in: in, out: out, now: time.Now}
}

// Run executes the full pipeline. autoAccept starts the inserter in its
// accept-everything state (the -yes flag).
func (r *Runner) Run(ctx context.Context, autoAccept bool) (*Report, error) {
	tab := r.cfg.LedgerTab()
	report := &Report{}

	backup := ledger.NewBackupManager(r.ss, r.cfg.BackupChunkRows)
	backupTab, err := backup.Rotate(ctx, tab)
	if err != nil {
		return nil, err
	}
	report.BackupTab = backupTab

	// The ledger snapshot and the calendar window are the only independent
	// external reads; everything downstream needs both.
	from, to := calendar.PreviousWeek(r.now())
	var (
		led    *ledger.Ledger
		events []calendar.Event
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		led, err = ledger.Load(gctx, r.ss, tab, r.cfg.LedgerYear)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = r.events.Events(gctx, r.cfg.CalendarID, from, to)
		if err != nil {
			return fmt.Errorf("fetch calendar events: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Loaded inputs",
		"ledger_rows", led.Len(), "events", len(events),
		"window_from", from.Format("01/02/2006"), "window_to", to.Format("01/02/2006"))

	clientTallies := reconcile.AggregateRows(led.Rows())
	if err := r.writeClientList(ctx, clientTallies); err != nil {
		return nil, err
	}

	known := make([]string, len(clientTallies))
	for i, t := range clientTallies {
		known[i] = t.Client
	}
	sessions := calendar.NewExtractor(known).Extract(events)
	report.Sessions = sessions

	engine := reconcile.NewEngine(match.New(r.cfg.MatchDistanceRatio))
	results := engine.Reconcile(sessions, led.Rows())
	report.Matches = results

	if err := r.writeSessions(ctx, results); err != nil {
		return nil, err
	}
	if err := r.writeLastWeek(ctx, sessions); err != nil {
		return nil, err
	}

	var unmatched []core.Session
	for _, res := range results {
		if res.Status == core.StatusNoMatch {
			unmatched = append(unmatched, res.Session)
		}
	}
	inserter := ledger.NewInserter(led, r.ss, r.in, r.out)
	outcome, err := inserter.Run(ctx, unmatched, autoAccept)
	if err != nil {
		return nil, err
	}
	report.Outcome = outcome

	buckets, err := revenue.NewAggregator(r.ss).WriteTotals(ctx, tab, led.Rows())
	if err != nil {
		return nil, err
	}
	report.Buckets = buckets

	if err := r.ss.ReorderTabs(ctx, []string{tab, TabLastWeek, TabSessions, TabClientList}); err != nil {
		return nil, fmt.Errorf("reorder tabs: %w", err)
	}

	slog.InfoContext(ctx, "Run complete",
		"matched", len(results)-len(unmatched), "unmatched", len(unmatched),
		"inserted", len(outcome.Inserted), "months", len(buckets))
	return report, nil
}

// writeClientList rebuilds the CLIENT LIST tab from the ledger tallies. The
// tab doubles as the known-client dictionary for event extraction.
func (r *Runner) writeClientList(ctx context.Context, tallies []core.ClientTally) error {
	rows := [][]string{{"CLIENT NAME", "SESSIONS COMPLETED"}}
	for _, t := range tallies {
		rows = append(rows, []string{t.Client, strconv.Itoa(t.Sessions)})
	}
	return r.writeReport(ctx, TabClientList, rows)
}

// writeSessions persists one row per extracted session with its match status,
// chronologically.
func (r *Runner) writeSessions(ctx context.Context, results []core.MatchResult) error {
	ordered := append([]core.MatchResult(nil), results...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Session.When().Before(ordered[j].Session.When())
	})

	rows := [][]string{{"CLIENT NAME", "DATE", "TIME", "MATCH STATUS"}}
	for _, res := range ordered {
		rows = append(rows, []string{
			res.Session.Client,
			res.Session.Date.ShortWeekday(),
			res.Session.Clock.String(),
			string(res.Status),
		})
	}
	return r.writeReport(ctx, TabSessions, rows)
}

// writeLastWeek rebuilds the weekly per-client report. The header grows one
// "Session N" column per session of the busiest client.
func (r *Runner) writeLastWeek(ctx context.Context, sessions []core.Session) error {
	tallies := reconcile.AggregateSessions(sessions)
	width := 0
	for _, t := range tallies {
		if t.Sessions > width {
			width = t.Sessions
		}
	}

	header := []string{"CLIENT NAME", "SESSIONS COMPLETED"}
	for i := 1; i <= width; i++ {
		header = append(header, fmt.Sprintf("Session %d", i))
	}
	rows := [][]string{header}
	for _, t := range tallies {
		row := []string{t.Client, strconv.Itoa(t.Sessions)}
		for _, d := range t.Dates {
			row = append(row, d.ShortWeekday())
		}
		rows = append(rows, row)
	}
	return r.writeReport(ctx, TabLastWeek, rows)
}

// writeReport clears (or creates) a report tab, writes rows from A1 and
// freezes the header row.
func (r *Runner) writeReport(ctx context.Context, tab string, rows [][]string) error {
	exists, err := r.hasTab(ctx, tab)
	if err != nil {
		return err
	}
	if exists {
		if err := r.ss.Clear(ctx, tab); err != nil {
			return fmt.Errorf("rebuild %q: %w", tab, err)
		}
	} else if err := r.ss.CreateTab(ctx, tab); err != nil {
		return fmt.Errorf("rebuild %q: %w", tab, err)
	}
	if err := r.ss.Update(ctx, tab, "A1", rows); err != nil {
		return fmt.Errorf("rebuild %q: %w", tab, err)
	}
	if err := r.ss.FreezeRows(ctx, tab, 1); err != nil {
		return fmt.Errorf("rebuild %q: %w", tab, err)
	}
	slog.InfoContext(ctx, "Rebuilt report tab", "tab", tab, "rows", len(rows)-1)
	return nil
}

func (r *Runner) hasTab(ctx context.Context, tab string) (bool, error) {
	tabs, err := r.ss.ListTabs(ctx)
	if err != nil {
		return false, fmt.Errorf("list tabs: %w", err)
	}
	for _, name := range tabs {
		if name == tab {
			return true, nil
		}
	}
	return false, nil
}
