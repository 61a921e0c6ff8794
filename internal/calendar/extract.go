package calendar

import (
	"log/slog"
	"strings"

	"ledgersync/internal/core"
	"ledgersync/internal/match"
)

// Extractor turns raw events into sessions by resolving each event to a
// known client. Events that resolve to nobody are dropped with a warning;
// they must not surface downstream as empty-named NO MATCH noise.
type Extractor struct {
	known []string
}

// NewExtractor takes the known-client names, typically read back from the
// CLIENT LIST tab. Order matters only for tie-breaking, so callers should
// pass a deterministically ordered list.
func NewExtractor(known []string) *Extractor {
	return &Extractor{known: known}
}

// Extract builds one Session per resolvable event. A bad event never aborts
// the batch.
func (x *Extractor) Extract(events []Event) []core.Session {
	sessions := make([]core.Session, 0, len(events))
	for _, ev := range events {
		client, ok := x.resolve(ev)
		if !ok {
			slog.Warn("Dropping event with no known client", "title", ev.Title, "start", ev.Start)
			continue
		}
		if ev.Start.IsZero() {
			slog.Warn("Dropping event with no start time", "title", ev.Title, "client", client)
			continue
		}
		s := core.Session{
			Client: client,
			Date:   core.DateOf(ev.Start),
			Source: core.SourceCalendar,
		}
		if !ev.AllDay {
			s.Clock = core.ClockOf(ev.Start)
		}
		sessions = append(sessions, s)
	}
	return sessions
}

// resolve scans the title first, then the description. The known client with
// the longest matching substring wins; ties go to the earlier list entry.
func (x *Extractor) resolve(ev Event) (string, bool) {
	for _, text := range []string{ev.Title, ev.Description} {
		haystack := match.Normalize(text)
		if haystack == "" {
			continue
		}
		best, bestLen := "", 0
		for _, client := range x.known {
			if l := matchLen(haystack, client); l > bestLen {
				best, bestLen = client, l
			}
		}
		if bestLen > 0 {
			return best, true
		}
	}
	return "", false
}

// matchLen returns the length of the longest piece of client found in
// haystack: the whole normalized name, or failing that its longest single
// token (first or last name alone).
func matchLen(haystack, client string) int {
	full := match.Normalize(client)
	if full == "" {
		return 0
	}
	if strings.Contains(haystack, full) {
		return len(full)
	}
	best := 0
	for _, tok := range strings.Fields(full) {
		if len(tok) > best && strings.Contains(haystack, tok) {
			best = len(tok)
		}
	}
	return best
}
