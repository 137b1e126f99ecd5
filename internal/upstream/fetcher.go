// Package upstream queries the speechmeme document store for recent posts.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/tidwall/gjson"

	"speechmeme/internal/core"
)

const maxBodySize = 10 * 1024 * 1024 // 10 MB

// Config describes the structured query.
type Config struct {
	URL        string
	Collection string
	OrderBy    string
	Limit      int
}

// Fetcher posts one structured query per call and normalizes the result.
type Fetcher struct {
	client *http.Client
	url    string
	body   []byte
}

// NewFetcher builds a Fetcher. The query body is fixed at construction.
func NewFetcher(cfg Config, client *http.Client) (*Fetcher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("upstream URL is required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	body, err := json.Marshal(newRunQuery(cfg.Collection, cfg.OrderBy, cfg.Limit))
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}
	return &Fetcher{client: client, url: cfg.URL, body: body}, nil
}

// Fetch runs the query and returns the items that carry an image.
// Every failure is returned as a *core.UpstreamError.
func (f *Fetcher) Fetch(ctx context.Context) ([]core.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(f.body))
	if err != nil {
		return nil, core.NewTransportError("creating request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, core.NewTransportError("posting query", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, core.NewTransportError("reading response body", err)
	}
	if len(raw) > maxBodySize {
		return nil, core.NewParseError(fmt.Sprintf("response body too large (exceeds %d bytes)", maxBodySize), nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = gjson.GetBytes(raw, "0.error.message").String()
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, core.NewStatusError(resp.StatusCode, msg)
	}

	items, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	slog.Debug("upstream query complete", "bytes", len(raw), "items", len(items))
	return items, nil
}

// Parse extracts items from a runQuery response.
// The response must be a JSON array; entries without a document or without an
// image are skipped, and a missing displayName becomes core.DefaultDisplayName.
func Parse(raw []byte) ([]core.Item, error) {
	if !gjson.ValidBytes(raw) {
		return nil, core.NewParseError("response is not valid JSON", nil)
	}
	result := gjson.ParseBytes(raw)
	if !result.IsArray() {
		return nil, core.NewParseError("response is not an array", nil)
	}

	var (
		items   []core.Item
		skipped int
	)
	result.ForEach(func(_, entry gjson.Result) bool {
		fields := entry.Get("document.fields")
		if !fields.IsObject() {
			skipped++
			return true
		}
		item, ok := core.NewItem(
			stringValue(fields, "displayName"),
			stringValue(fields, "image"),
			stringValue(fields, "photoURL"),
		)
		if !ok {
			skipped++
			return true
		}
		items = append(items, item)
		return true
	})

	if skipped > 0 {
		slog.Debug("skipped upstream records", "count", skipped)
	}
	return items, nil
}

// stringValue reads fields.<name>.stringValue, returning "" for any other shape.
func stringValue(fields gjson.Result, name string) string {
	v := fields.Get(name + ".stringValue")
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}
