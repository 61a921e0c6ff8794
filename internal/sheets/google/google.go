// Package google implements the spreadsheet port against the Google Sheets
// v4 API. Row and tab indices are translated from the port's 1-based
// convention to the API's 0-based one here and nowhere else.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ledgersync/internal/sheets"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	retryAttempts int
}

// Ensure interface conformance
var _ sheets.Spreadsheet = (*Client)(nil)

// New creates a Sheets client over an already-authenticated HTTP client.
func New(ctx context.Context, httpClient *http.Client, spreadsheetID string, retryAttempts int) (*Client, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := gsheet.NewService(ctx, goption.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, retryAttempts: retryAttempts}, nil
}

func (c *Client) ReadAll(ctx context.Context, tab string) ([][]string, error) {
	var resp *gsheet.ValueRange
	err := c.withRetry(ctx, "values.get", func() error {
		var err error
		resp, err = c.svc.Spreadsheets.Values.Get(c.spreadsheetID, quoteTab(tab)).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", tab, err)
	}
	out := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		out[i] = toStrings(row)
	}
	return out, nil
}

func (c *Client) ListTabs(ctx context.Context) ([]string, error) {
	var ss *gsheet.Spreadsheet
	err := c.withRetry(ctx, "spreadsheets.get", func() error {
		var err error
		ss, err = c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}
	names := make([]string, len(ss.Sheets))
	for i, sh := range ss.Sheets {
		names[i] = sh.Properties.Title
	}
	return names, nil
}

func (c *Client) Update(ctx context.Context, tab, startCell string, rows [][]string) error {
	values := make([][]any, len(rows))
	for i, row := range rows {
		line := make([]any, len(row))
		for j, v := range row {
			line[j] = v
		}
		values[i] = line
	}
	vr := &gsheet.ValueRange{Values: values}
	rng := fmt.Sprintf("%s!%s", quoteTab(tab), startCell)
	err := c.withRetry(ctx, "values.update", func() error {
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
			ValueInputOption("USER_ENTERED").Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (c *Client) Clear(ctx context.Context, tab string) error {
	err := c.withRetry(ctx, "values.clear", func() error {
		_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, quoteTab(tab), &gsheet.ClearValuesRequest{}).
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("clear %q: %w", tab, err)
	}
	return nil
}

func (c *Client) InsertRowAt(ctx context.Context, tab string, index int, row []string) error {
	sheetID, err := c.sheetID(ctx, tab)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		InsertDimension: &gsheet.InsertDimensionRequest{
			Range: &gsheet.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "ROWS",
				StartIndex: int64(index - 1),
				EndIndex:   int64(index),
			},
			InheritFromBefore: index > 1,
		},
	}}}
	err = c.withRetry(ctx, "insert.dimension", func() error {
		_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("insert row %d in %q: %w", index, tab, err)
	}
	return c.Update(ctx, tab, fmt.Sprintf("A%d", index), [][]string{row})
}

func (c *Client) DeleteRowAt(ctx context.Context, tab string, index int) error {
	sheetID, err := c.sheetID(ctx, tab)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		DeleteDimension: &gsheet.DeleteDimensionRequest{
			Range: &gsheet.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "ROWS",
				StartIndex: int64(index - 1),
				EndIndex:   int64(index),
			},
		},
	}}}
	err = c.withRetry(ctx, "delete.dimension", func() error {
		_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete row %d in %q: %w", index, tab, err)
	}
	return nil
}

func (c *Client) CreateTab(ctx context.Context, name string) error {
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{
			Properties: &gsheet.SheetProperties{Title: name},
		},
	}}}
	err := c.withRetry(ctx, "sheet.add", func() error {
		_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("create tab %q: %w", name, err)
	}
	return nil
}

func (c *Client) DeleteTab(ctx context.Context, name string) error {
	sheetID, err := c.sheetID(ctx, name)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		DeleteSheet: &gsheet.DeleteSheetRequest{SheetId: sheetID},
	}}}
	err = c.withRetry(ctx, "sheet.delete", func() error {
		_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete tab %q: %w", name, err)
	}
	return nil
}

func (c *Client) ReorderTabs(ctx context.Context, order []string) error {
	var ss *gsheet.Spreadsheet
	err := c.withRetry(ctx, "spreadsheets.get", func() error {
		var err error
		ss, err = c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("reorder tabs: %w", err)
	}
	byName := map[string]*gsheet.SheetProperties{}
	for _, sh := range ss.Sheets {
		byName[sh.Properties.Title] = sh.Properties
	}
	var reqs []*gsheet.Request
	pos := 0
	for _, name := range order {
		props, ok := byName[name]
		if !ok {
			slog.WarnContext(ctx, "Tab not found during reorder", "tab", name)
			continue
		}
		reqs = append(reqs, &gsheet.Request{
			UpdateSheetProperties: &gsheet.UpdateSheetPropertiesRequest{
				Properties: &gsheet.SheetProperties{SheetId: props.SheetId, Index: int64(pos)},
				Fields:     "index",
			},
		})
		pos++
	}
	if len(reqs) == 0 {
		return nil
	}
	err = c.withRetry(ctx, "sheet.reorder", func() error {
		_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{Requests: reqs}).
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("reorder tabs: %w", err)
	}
	return nil
}

func (c *Client) FreezeRows(ctx context.Context, tab string, count int) error {
	sheetID, err := c.sheetID(ctx, tab)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		UpdateSheetProperties: &gsheet.UpdateSheetPropertiesRequest{
			Properties: &gsheet.SheetProperties{
				SheetId:        sheetID,
				GridProperties: &gsheet.GridProperties{FrozenRowCount: int64(count)},
			},
			Fields: "gridProperties.frozenRowCount",
		},
	}}}
	err = c.withRetry(ctx, "sheet.freeze", func() error {
		_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("freeze rows in %q: %w", tab, err)
	}
	return nil
}

func (c *Client) sheetID(ctx context.Context, tab string) (int64, error) {
	var ss *gsheet.Spreadsheet
	err := c.withRetry(ctx, "spreadsheets.get", func() error {
		var err error
		ss, err = c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("lookup tab %q: %w", tab, err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties.Title == tab {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("lookup tab %q: %w", tab, sheets.ErrTabNotFound)
}

// withRetry runs fn, retrying rate-limit and server errors with a short
// backoff. Authorization and not-found failures are mapped to the port's
// sentinels and never retried.
func (c *Client) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			switch {
			case gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden:
				return fmt.Errorf("%s: %w", op, sheets.ErrUnauthorized)
			case gerr.Code == http.StatusNotFound:
				return fmt.Errorf("%s: %w", op, sheets.ErrTabNotFound)
			case gerr.Code != http.StatusTooManyRequests && gerr.Code < 500:
				return err
			}
		}
		if attempt >= c.retryAttempts {
			return &sheets.TransientError{Op: op, Err: err}
		}
		delay := time.Duration(attempt+1) * 500 * time.Millisecond
		slog.WarnContext(ctx, "Retrying Sheets call", "op", op, "attempt", attempt+1, "delay", delay, "error", err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = fmt.Sprint(v)
	}
	return out
}

// quoteTab wraps tab names in single quotes so names with spaces survive A1
// notation.
func quoteTab(tab string) string {
	return "'" + tab + "'"
}
