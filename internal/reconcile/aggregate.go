package reconcile

import (
	"sort"
	"strings"

	"ledgersync/internal/core"
	"ledgersync/internal/match"
)

// AggregateRows tallies ledger rows per client. The grouping key is the
// canonical (case/whitespace-folded) name; PARTIAL matching is never used
// here, so two genuinely different people are never merged. The displayed
// name is the first spelling seen.
func AggregateRows(rows []core.LedgerRow) []core.ClientTally {
	acc := newTallyAccumulator()
	for _, row := range rows {
		acc.add(row.Client, row.Date)
	}
	return acc.sorted()
}

// AggregateSessions tallies sessions per client, with dates in input order.
func AggregateSessions(sessions []core.Session) []core.ClientTally {
	acc := newTallyAccumulator()
	for _, s := range sessions {
		acc.add(s.Client, s.Date)
	}
	return acc.sorted()
}

type tallyAccumulator struct {
	byKey map[string]*core.ClientTally
	keys  []string
}

func newTallyAccumulator() *tallyAccumulator {
	return &tallyAccumulator{byKey: map[string]*core.ClientTally{}}
}

func (a *tallyAccumulator) add(name string, date core.Date) {
	key := match.Normalize(name)
	if key == "" {
		return
	}
	t, ok := a.byKey[key]
	if !ok {
		t = &core.ClientTally{Client: strings.TrimSpace(name)}
		a.byKey[key] = t
		a.keys = append(a.keys, key)
	}
	t.Sessions++
	t.Dates = append(t.Dates, date)
}

// sorted returns tallies by session count descending, canonical name
// ascending on ties. Insertion-order keys plus an explicit comparator keep
// the output independent of map iteration order.
func (a *tallyAccumulator) sorted() []core.ClientTally {
	out := make([]core.ClientTally, 0, len(a.keys))
	keyOf := make(map[string]string, len(a.keys))
	for _, key := range a.keys {
		t := *a.byKey[key]
		keyOf[t.Client] = key
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Sessions != out[j].Sessions {
			return out[i].Sessions > out[j].Sessions
		}
		return keyOf[out[i].Client] < keyOf[out[j].Client]
	})
	return out
}
