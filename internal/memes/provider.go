// Package memes implements the cache-or-fetch data provider behind the slash command.
package memes

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"speechmeme/internal/cache"
	"speechmeme/internal/core"
	"speechmeme/internal/observability"
)

// Source tells where a Result's items came from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceUpstream Source = "upstream"
	// SourceNone means no data: the snapshot was unusable and the fetch yielded nothing.
	SourceNone Source = "none"
)

// Result is the outcome of GetItems.
type Result struct {
	Items  []core.Item
	Source Source
}

// Empty reports whether there is nothing to serve.
func (r Result) Empty() bool {
	return len(r.Items) == 0
}

// Fetcher retrieves a fresh item list from upstream.
type Fetcher interface {
	Fetch(ctx context.Context) ([]core.Item, error)
}

// Provider serves items from the cache slot, refreshing it from upstream when
// the snapshot is missing, unreadable or older than maxAge.
type Provider struct {
	slot    *cache.Slot
	fetcher Fetcher
	maxAge  time.Duration
	metrics *observability.Metrics
}

// NewProvider creates a Provider. metrics may be nil.
func NewProvider(slot *cache.Slot, fetcher Fetcher, maxAge time.Duration, metrics *observability.Metrics) *Provider {
	return &Provider{
		slot:    slot,
		fetcher: fetcher,
		maxAge:  maxAge,
		metrics: metrics,
	}
}

// GetItems returns the current item list. It never fails: every storage or
// upstream error degrades to a miss or an empty Result. A snapshot without
// items is a miss regardless of its age.
//
// An empty fetch leaves the stored snapshot untouched, so stale data survives
// until a later refresh succeeds.
func (p *Provider) GetItems(ctx context.Context) Result {
	snapshot, err := p.slot.Load(ctx)
	switch {
	case err == nil && len(snapshot.Items) == 0:
		slog.Info("cached snapshot has no items")
		p.metrics.CacheLookup(observability.LookupMiss)
	case err == nil && p.slot.IsValid(snapshot, p.maxAge):
		slog.Info("using cached data", "items", len(snapshot.Items))
		p.metrics.CacheLookup(observability.LookupHit)
		return Result{Items: snapshot.Items, Source: SourceCache}
	case err == nil:
		slog.Info("cache expired", "max_age", p.maxAge)
		p.metrics.CacheLookup(observability.LookupExpired)
	case cache.IsMiss(err):
		p.metrics.CacheLookup(observability.LookupMiss)
	default:
		p.metrics.CacheLookup(observability.LookupError)
	}

	slog.Info("fetching new data from upstream")
	items := p.fetch(ctx)
	if len(items) == 0 {
		slog.Warn("unable to fetch data from upstream")
		return Result{Items: []core.Item{}, Source: SourceNone}
	}

	_, err = p.slot.Save(ctx, items)
	p.metrics.CacheSave(err)
	if err == nil {
		slog.Info("fetched and updated cache data", "items", len(items))
	}
	return Result{Items: items, Source: SourceUpstream}
}

func (p *Provider) fetch(ctx context.Context) []core.Item {
	start := time.Now()
	items, err := p.fetcher.Fetch(ctx)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		attrs := []any{"error", err, "duration", elapsed}
		var upErr *core.UpstreamError
		if errors.As(err, &upErr) {
			attrs = append(attrs, "error_type", upErr.Type, "retryable", upErr.Retryable())
		}
		slog.Error("error fetching upstream data", attrs...)
		p.metrics.Fetch(observability.FetchError, elapsed)
		return nil
	case len(items) == 0:
		p.metrics.Fetch(observability.FetchEmpty, elapsed)
		return nil
	default:
		p.metrics.Fetch(observability.FetchSuccess, elapsed)
		return items
	}
}

// Status describes the stored snapshot without triggering a fetch.
type Status struct {
	Present    bool      `json:"present"`
	Timestamp  time.Time `json:"timestamp,omitzero"`
	AgeSeconds float64   `json:"age_seconds"`
	Valid      bool      `json:"valid"`
	Count      int       `json:"count"`
	MaxAge     string    `json:"max_age"`
	Error      string    `json:"error,omitempty"`
}

// Status reports the state of the cache slot.
func (p *Provider) Status(ctx context.Context) Status {
	st := Status{MaxAge: p.maxAge.String()}
	snapshot, err := p.slot.Load(ctx)
	if err != nil {
		if !cache.IsMiss(err) {
			st.Error = err.Error()
		}
		return st
	}
	now := p.slot.Now()
	st.Present = true
	st.Timestamp = snapshot.Timestamp
	st.AgeSeconds = snapshot.Age(now).Seconds()
	st.Valid = cache.IsValid(snapshot, p.maxAge, now)
	st.Count = len(snapshot.Items)
	return st
}
