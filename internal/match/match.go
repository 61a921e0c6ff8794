// Package match decides whether two client-name strings denote the same
// client. The policy is a fixed priority order, not a scoring blend, so the
// outcome is deterministic and symmetric.
package match

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"ledgersync/internal/core"
)

// Level is the strength of a name match, ordered so that a higher value is a
// better match.
type Level int

const (
	LevelNone Level = iota
	LevelPartial
	LevelExact
)

func (l Level) String() string {
	switch l {
	case LevelExact:
		return "EXACT"
	case LevelPartial:
		return "PARTIAL"
	default:
		return "NONE"
	}
}

// Matcher applies the matching policy. ratio bounds the typo tolerance: a
// PARTIAL match allows one edit per ratio runes of the shorter name.
type Matcher struct {
	ratio int
}

// DefaultRatio is the edit-distance bound used when none is configured. It
// is a tunable, not an invariant.
const DefaultRatio = 3

func New(ratio int) *Matcher {
	if ratio < 1 {
		ratio = DefaultRatio
	}
	return &Matcher{ratio: ratio}
}

// Normalize folds case and collapses whitespace. It is the canonical form
// used for aggregation keys as well; aggregation uses only EXACT equality on
// it, never PARTIAL.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Match classifies the pair, first rule to hold wins:
// normalized equality, strict substring, edit distance within bound.
func (m *Matcher) Match(a, b string) Level {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return LevelNone
	}
	if na == nb {
		return LevelExact
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return LevelPartial
	}
	if m.withinDistance(na, nb) {
		return LevelPartial
	}
	return LevelNone
}

// Distance is the Levenshtein distance between the normalized names, used by
// callers to break ties between equal match levels.
func (m *Matcher) Distance(a, b string) int {
	return levenshtein.DistanceForStrings([]rune(Normalize(a)), []rune(Normalize(b)), levenshtein.DefaultOptions)
}

func (m *Matcher) withinDistance(na, nb string) bool {
	shorter := len([]rune(na))
	if l := len([]rune(nb)); l < shorter {
		shorter = l
	}
	// Too little signal to call anything a typo.
	if shorter < m.ratio {
		return false
	}
	d := levenshtein.DistanceForStrings([]rune(na), []rune(nb), levenshtein.DefaultOptions)
	return d*m.ratio <= shorter
}

// Best selects the ledger row that best matches name among candidates.
// Tie-breaks, in order: higher level, smaller edit distance, smaller row
// index. Candidates must already share the session's date; iteration is in
// slice order so the result is stable.
func (m *Matcher) Best(name string, candidates []*core.LedgerRow) (*core.LedgerRow, Level) {
	var (
		bestRow   *core.LedgerRow
		bestLevel Level
		bestDist  int
	)
	for _, row := range candidates {
		level := m.Match(name, row.Client)
		if level == LevelNone {
			continue
		}
		dist := m.Distance(name, row.Client)
		better := level > bestLevel ||
			(level == bestLevel && dist < bestDist) ||
			(level == bestLevel && dist == bestDist && bestRow != nil && row.Index < bestRow.Index)
		if bestRow == nil || better {
			bestRow, bestLevel, bestDist = row, level, dist
		}
	}
	return bestRow, bestLevel
}
