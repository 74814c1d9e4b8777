// internal/dictionary/client.go
//
// Remote dictionary lookup (dictionaryapi.dev-compatible).
//
//   GET {base}/{word}
//     200 + non-empty JSON array → found
//     200 + empty array          → not found
//     404                        → not found
//     anything else / transport  → error (caller decides)

package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public free dictionary API.
const DefaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

// Client looks single words up over HTTP.
type Client struct {
	base string
	http *http.Client
}

// New returns a client for base (DefaultBaseURL when empty).
// timeout bounds each lookup; zero means 5s.
func New(base string, timeout time.Duration) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// Lookup reports whether word has a dictionary entry.
func (c *Client) Lookup(ctx context.Context, word string) (bool, error) {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return false, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/"+url.PathEscape(w), nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("dictionary lookup %q: %w", w, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("dictionary responded with status %d", resp.StatusCode)
	}

	var entries []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return false, fmt.Errorf("decode dictionary response: %w", err)
	}
	return len(entries) > 0, nil
}
