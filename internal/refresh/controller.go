// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

// Package refresh owns the snapshot lifecycle: cache-first reads, feed
// refetches, the cosmetic jitter pass and assistant-driven patches. All
// snapshot replacement funnels through this package so subscribers see
// every change exactly once.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/datapulse/datapulse/internal/analytics"
	"github.com/datapulse/datapulse/internal/cache"
	"github.com/datapulse/datapulse/internal/logging"
	"github.com/datapulse/datapulse/internal/metrics"
	"github.com/datapulse/datapulse/internal/models"
	"github.com/datapulse/datapulse/internal/source"
)

// Status describes the controller for health and dashboard metadata.
type Status struct {
	Loading     bool       `json:"loading"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
	LastError   string     `json:"lastError,omitempty"`
}

// Controller mediates between the feed, the aggregator and the snapshot
// cache. Get never fails: a broken feed degrades to the last known
// snapshot, then to empty metrics.
type Controller struct {
	fetcher source.Fetcher
	agg     *analytics.Aggregator
	cache   *cache.SnapshotCache

	// refreshMu serializes actual refetches; concurrent Get calls that miss
	// the cache queue behind one fetch instead of stampeding the feed.
	refreshMu sync.Mutex

	mu          sync.RWMutex
	loading     bool
	lastUpdated *time.Time
	lastErr     error

	subMu       sync.Mutex
	subscribers []func(*models.Snapshot)
}

// NewController wires the snapshot pipeline together.
func NewController(fetcher source.Fetcher, agg *analytics.Aggregator, c *cache.SnapshotCache) *Controller {
	return &Controller{fetcher: fetcher, agg: agg, cache: c}
}

// Subscribe registers a callback invoked with every published snapshot:
// refreshes, jitter passes and assistant patches alike. Callbacks must not
// block.
func (c *Controller) Subscribe(fn func(*models.Snapshot)) {
	c.subMu.Lock()
	c.subscribers = append(c.subscribers, fn)
	c.subMu.Unlock()
}

// Get returns the current snapshot. Unless force is set, a fresh cached
// snapshot is returned as-is; otherwise the feed is refetched and
// re-aggregated. The bool reports whether the result came from cache.
//
// Degradation order on fetch failure: last known snapshot regardless of
// age, then a fully-populated empty snapshot. Errors are recorded in
// Status, never returned.
func (c *Controller) Get(ctx context.Context, force bool) (*models.Snapshot, bool) {
	if !force {
		if snap, ok := c.cache.Get(); ok {
			metrics.RefreshRuns.WithLabelValues("cached").Inc()
			return snap, true
		}
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another caller may have completed the refresh while this one waited.
	if !force {
		if snap, ok := c.cache.Get(); ok {
			metrics.RefreshRuns.WithLabelValues("cached").Inc()
			return snap, true
		}
	}

	c.setLoading(true)
	defer c.setLoading(false)

	records, err := c.fetcher.Fetch(ctx)
	if err != nil {
		c.recordError(err)
		logging.Error().Err(err).Msg("feed refresh failed")

		if snap, ok := c.cache.Stale(); ok {
			metrics.RefreshRuns.WithLabelValues("stale_fallback").Inc()
			logging.Warn().Msg("serving last known snapshot after fetch failure")
			return snap, true
		}
		metrics.RefreshRuns.WithLabelValues("empty_fallback").Inc()
		return c.agg.Aggregate(nil), false
	}

	snap := c.agg.Aggregate(records)
	c.cache.Put(snap)
	c.recordSuccess(snap.LastUpdated)
	metrics.RefreshRuns.WithLabelValues("refreshed").Inc()
	c.publish(snap)

	logging.Info().
		Int("records", len(records)).
		Int("totalOrders", snap.TotalOrders).
		Msg("snapshot refreshed")
	return snap, false
}

// Current returns the latest snapshot without triggering any fetch, or
// false when nothing has been loaded yet.
func (c *Controller) Current() (*models.Snapshot, bool) {
	return c.cache.Stale()
}

// ApplyJitter publishes a cosmetically nudged copy of the current snapshot.
// It is a no-op while no snapshot exists or a refresh is in flight.
func (c *Controller) ApplyJitter() {
	if c.Loading() {
		return
	}
	cur, ok := c.cache.Stale()
	if !ok {
		return
	}
	next := analytics.Jitter(cur)
	c.cache.Swap(next)
	c.publish(next)
}

// ApplyPatch merges assistant-supplied field updates into the current
// snapshot and publishes the result. Patching without a snapshot or with a
// malformed patch is reported back to the caller; the current snapshot is
// left untouched in both cases.
func (c *Controller) ApplyPatch(patch map[string]interface{}) (*models.Snapshot, error) {
	cur, ok := c.cache.Stale()
	if !ok {
		cur = c.agg.Aggregate(nil)
	}
	next, err := cur.Merge(patch)
	if err != nil {
		return nil, err
	}
	c.cache.Swap(next)
	c.publish(next)
	return next, nil
}

// Status reports the controller state for health and response metadata.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Status{Loading: c.loading, LastUpdated: c.lastUpdated}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}

// Loading reports whether a refresh is in flight.
func (c *Controller) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *Controller) setLoading(v bool) {
	c.mu.Lock()
	c.loading = v
	c.mu.Unlock()
}

func (c *Controller) recordSuccess(at time.Time) {
	c.mu.Lock()
	c.lastUpdated = &at
	c.lastErr = nil
	c.mu.Unlock()
}

func (c *Controller) recordError(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

func (c *Controller) publish(snap *models.Snapshot) {
	c.subMu.Lock()
	subs := make([]func(*models.Snapshot), len(c.subscribers))
	copy(subs, c.subscribers)
	c.subMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
