// Package reconcile joins normalized calendar sessions against ledger rows
// and derives the per-client tallies the report tabs are built from.
package reconcile

import (
	"log/slog"

	"ledgersync/internal/core"
	"ledgersync/internal/match"
)

// Engine classifies calendar sessions as MATCH or NO MATCH against a frozen
// ledger snapshot. Given the same inputs it always produces the same output:
// rows are scanned in ledger order and the matcher's tie-breaks are total.
type Engine struct {
	matcher *match.Matcher
}

func NewEngine(m *match.Matcher) *Engine {
	return &Engine{matcher: m}
}

// Reconcile returns one MatchResult per session, in session order. Candidate
// rows are restricted to exact date equality; the best name match wins per
// the matcher's policy.
func (e *Engine) Reconcile(sessions []core.Session, rows []core.LedgerRow) []core.MatchResult {
	results := make([]core.MatchResult, 0, len(sessions))
	for _, s := range sessions {
		candidates := rowsOnDate(rows, s.Date)
		row, level := e.matcher.Best(s.Client, candidates)
		if level == match.LevelNone {
			results = append(results, core.MatchResult{Session: s, Status: core.StatusNoMatch})
			continue
		}
		slog.Debug("Matched session to ledger row",
			"client", s.Client, "date", s.Date.String(), "row", row.Index, "level", level.String())
		results = append(results, core.MatchResult{Session: s, Row: row, Status: core.StatusMatch})
	}
	return results
}

func rowsOnDate(rows []core.LedgerRow, date core.Date) []*core.LedgerRow {
	var out []*core.LedgerRow
	for i := range rows {
		if rows[i].Date.Equal(date.Time) {
			out = append(out, &rows[i])
		}
	}
	return out
}
