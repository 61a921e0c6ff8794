package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	goption "google.golang.org/api/option"
)

// GoogleSource lists events through the Calendar v3 API.
type GoogleSource struct {
	svc *gcal.Service
}

var _ EventSource = (*GoogleSource)(nil)

func NewGoogleSource(ctx context.Context, httpClient *http.Client) (*GoogleSource, error) {
	svc, err := gcal.NewService(ctx, goption.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	return &GoogleSource{svc: svc}, nil
}

func (g *GoogleSource) Events(ctx context.Context, calendarID string, from, to time.Time) ([]Event, error) {
	resp, err := g.svc.Events.List(calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list events for %s: %w", calendarID, err)
	}

	events := make([]Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		ev, err := fromAPI(item)
		if err != nil {
			// One bad event never aborts the batch.
			slog.WarnContext(ctx, "Skipping unparseable event", "summary", item.Summary, "error", err)
			continue
		}
		events = append(events, ev)
	}
	slog.InfoContext(ctx, "Fetched calendar events",
		"calendar", calendarID, "from", from, "to", to, "count", len(events))
	return events, nil
}

func fromAPI(item *gcal.Event) (Event, error) {
	ev := Event{Title: item.Summary, Description: item.Description}
	if item.Start == nil {
		return Event{}, fmt.Errorf("event %q has no start", item.Summary)
	}
	switch {
	case item.Start.DateTime != "":
		t, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return Event{}, fmt.Errorf("start %q: %w", item.Start.DateTime, err)
		}
		ev.Start = t
	case item.Start.Date != "":
		t, err := time.Parse("2006-01-02", item.Start.Date)
		if err != nil {
			return Event{}, fmt.Errorf("start %q: %w", item.Start.Date, err)
		}
		ev.Start = t
		ev.AllDay = true
	default:
		return Event{}, fmt.Errorf("event %q has an empty start", item.Summary)
	}
	return ev, nil
}
