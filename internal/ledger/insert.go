package ledger

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"ledgersync/internal/core"
	"ledgersync/internal/sheets"
)

// Field literals for automation-inserted rows. The NOTES tag marks the row
// for the operator's later review.
const (
	insertedSessionType = "Individual"
	insertedCountLabel  = "x of x"
	insertedPrice       = "$XXX"
	insertedDueStatus   = "DUE???"
	insertedMonthlyCalc = "MONTHLY CALC??"
	insertedStatusTag   = "NO MATCH, INSERTED"
)

// promptState is the interactive protocol's state machine.
type promptState int

const (
	statePrompting promptState = iota
	stateAutoAccept            // terminal for prompting; rows keep flowing
	stateStopped               // terminal; remaining sessions are skipped
)

// Outcome reports what happened to each unmatched session.
type Outcome struct {
	Inserted []core.Session
	Rejected []core.Session // inserted, then removed on operator reject
	NoAnchor []core.Session // skipped: no ledger row shares the date
	Skipped  []core.Session // skipped: operator quit before reaching them
}

// Inserter performs guarded, reversible insertion of unmatched sessions.
// Operator input is read from in and prompts written to out, so tests can
// script the whole exchange.
type Inserter struct {
	ledger *Ledger
	dst    sheets.TabWriter
	in     *bufio.Scanner
	out    io.Writer
}

func NewInserter(l *Ledger, dst sheets.TabWriter, in io.Reader, out io.Writer) *Inserter {
	return &Inserter{
		ledger: l,
		dst:    dst,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

// Run inserts each unmatched session at its anchor position, prompting after
// every insertion. Sessions are processed in chronological order. autoAccept
// starts the protocol in its accept-everything state (the -yes flag).
//
// A missing anchor date is surfaced and skipped, never fatal: it signals a
// gap the automation cannot resolve alone. Everything else that fails aborts
// the batch; rows already confirmed stay in the ledger.
func (ins *Inserter) Run(ctx context.Context, unmatched []core.Session, autoAccept bool) (Outcome, error) {
	sessions := append([]core.Session(nil), unmatched...)
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].When().Before(sessions[j].When())
	})

	state := statePrompting
	if autoAccept {
		state = stateAutoAccept
	}

	var out Outcome
	for i, s := range sessions {
		if state == stateStopped {
			out.Skipped = append(out.Skipped, sessions[i:]...)
			break
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}

		anchor := ins.ledger.anchorIndex(s.Date)
		if anchor == 0 {
			err := &core.NoAnchorDateError{Client: s.Client, Date: s.Date}
			fmt.Fprintf(ins.out, "Skipping %s on %s: %v\n", s.Client, s.Date, err)
			slog.WarnContext(ctx, "No anchor row for unmatched session", "client", s.Client, "date", s.Date.String())
			out.NoAnchor = append(out.NoAnchor, s)
			continue
		}

		index := anchor + 1
		row := core.LedgerRow{
			Date:        s.Date,
			Client:      s.Client,
			SessionType: insertedSessionType,
			CountLabel:  insertedCountLabel,
			Price:       insertedPrice,
			DueStatus:   insertedDueStatus,
			MonthlyCalc: insertedMonthlyCalc,
			StatusTag:   insertedStatusTag,
		}
		if err := ins.ledger.insertAt(ctx, ins.dst, index, row); err != nil {
			return out, err
		}
		fmt.Fprintf(ins.out, "Inserted unmatched session for %s on %s at row %d\n", s.Client, s.Date, index)

		if state == stateAutoAccept {
			out.Inserted = append(out.Inserted, s)
			continue
		}

		answer, err := ins.prompt()
		if err != nil {
			return out, err
		}
		switch answer {
		case "y":
			out.Inserted = append(out.Inserted, s)
		case "n":
			if err := ins.ledger.removeAt(ctx, ins.dst, index); err != nil {
				return out, err
			}
			fmt.Fprintln(ins.out, "Removed the row.")
			out.Rejected = append(out.Rejected, s)
		case "a":
			out.Inserted = append(out.Inserted, s)
			state = stateAutoAccept
			slog.InfoContext(ctx, "Accepting all remaining unmatched sessions without prompting")
		case "q":
			// The in-flight insertion completes; nothing rolls back.
			out.Inserted = append(out.Inserted, s)
			state = stateStopped
		}
	}

	slog.InfoContext(ctx, "Finished inserting unmatched sessions",
		"inserted", len(out.Inserted), "rejected", len(out.Rejected),
		"no_anchor", len(out.NoAnchor), "skipped", len(out.Skipped))
	return out, nil
}

// prompt blocks until one of the four recognized inputs arrives. Anything
// else is rejected and re-prompted with no state change.
func (ins *Inserter) prompt() (string, error) {
	for {
		fmt.Fprint(ins.out, "Keep this row? (y=yes, n=no, a=accept all, q=quit): ")
		if !ins.in.Scan() {
			if err := ins.in.Err(); err != nil {
				return "", fmt.Errorf("read operator input: %w", err)
			}
			return "", errors.New("operator input closed")
		}
		switch answer := strings.ToLower(strings.TrimSpace(ins.in.Text())); answer {
		case "y", "n", "a", "q":
			return answer, nil
		default:
			fmt.Fprintln(ins.out, "Invalid input. Please enter 'y', 'n', 'a', or 'q'.")
		}
	}
}
