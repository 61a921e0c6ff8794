package calendar

import (
	"context"
	"time"
)

// MemorySource is a fixed event list for tests and dry runs. It applies the
// same window filtering the real source delegates to the API.
type MemorySource struct {
	items []Event
}

var _ EventSource = (*MemorySource)(nil)

func NewMemorySource(items ...Event) *MemorySource {
	return &MemorySource{items: items}
}

func (m *MemorySource) Events(_ context.Context, _ string, from, to time.Time) ([]Event, error) {
	var out []Event
	for _, ev := range m.items {
		if ev.Start.Before(from) || ev.Start.After(to) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}
