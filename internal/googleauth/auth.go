// Package googleauth builds the authenticated HTTP client shared by the
// Sheets and Calendar adapters. It uses the user-consent OAuth token written
// by cmd/oauth-init; credentials come from files or inline JSON.
package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Scopes covers everything the pipeline touches: full spreadsheet access and
// read-only calendar access.
var Scopes = []string{
	sheetsapi.SpreadsheetsScope,
	calendar.CalendarReadonlyScope,
}

// Credentials locates the OAuth client secret and token, either inline or on
// disk. Inline values win when both are set.
type Credentials struct {
	ClientFile string
	ClientJSON string
	TokenFile  string
	TokenJSON  string
}

// Client returns an HTTP client that attaches and refreshes the user token.
func (c Credentials) Client(ctx context.Context) (*http.Client, error) {
	clientJSON, err := load(c.ClientJSON, c.ClientFile)
	if err != nil {
		return nil, fmt.Errorf("oauth client secret: %w", err)
	}
	cfg, err := google.ConfigFromJSON(clientJSON, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}

	tokenJSON, err := load(c.TokenJSON, c.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("oauth token (run oauth-init first): %w", err)
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(tokenJSON, tok); err != nil {
		return nil, fmt.Errorf("decode oauth token: %w", err)
	}

	return cfg.Client(ctx, tok), nil
}

func load(inline, file string) ([]byte, error) {
	switch {
	case strings.TrimSpace(inline) != "":
		return []byte(inline), nil
	case strings.TrimSpace(file) != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		return b, nil
	default:
		return nil, errors.New("not configured")
	}
}
