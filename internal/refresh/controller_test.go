// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package refresh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/datapulse/datapulse/internal/analytics"
	"github.com/datapulse/datapulse/internal/cache"
	"github.com/datapulse/datapulse/internal/config"
	"github.com/datapulse/datapulse/internal/models"
	"github.com/datapulse/datapulse/internal/source"
)

// fakeFetcher serves queued results and counts calls.
type fakeFetcher struct {
	records []models.Record
	err     error
	calls   int
}

func (f *fakeFetcher) Fetch(ctx context.Context) ([]models.Record, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func newTestController(t *testing.T, f source.Fetcher) *Controller {
	t.Helper()
	c, err := cache.Open(&config.CacheConfig{Path: "", TTL: time.Minute})
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return NewController(f, analytics.New(nil), c)
}

func orders(names ...string) []models.Record {
	recs := make([]models.Record, len(names))
	for i, n := range names {
		recs[i] = models.Record{OrderID: i + 1, CustomerName: n, State: "TX", City: "Austin"}
	}
	return recs
}

func TestGetFetchesOnColdCache(t *testing.T) {
	f := &fakeFetcher{records: orders("A", "B")}
	ctrl := newTestController(t, f)

	snap, cached := ctrl.Get(context.Background(), false)

	if cached {
		t.Error("cold cache must not report a cache hit")
	}
	if snap.TotalOrders != 2 {
		t.Errorf("got %d orders, want 2", snap.TotalOrders)
	}
	if f.calls != 1 {
		t.Errorf("expected one fetch, got %d", f.calls)
	}
}

func TestGetServesCacheWithoutFetching(t *testing.T) {
	f := &fakeFetcher{records: orders("A")}
	ctrl := newTestController(t, f)

	ctrl.Get(context.Background(), false)
	snap, cached := ctrl.Get(context.Background(), false)

	if !cached {
		t.Error("second Get must be served from cache")
	}
	if snap.TotalOrders != 1 {
		t.Errorf("got %d orders, want 1", snap.TotalOrders)
	}
	if f.calls != 1 {
		t.Errorf("cache hit must not refetch, got %d calls", f.calls)
	}
}

func TestGetForceBypassesCache(t *testing.T) {
	f := &fakeFetcher{records: orders("A")}
	ctrl := newTestController(t, f)

	ctrl.Get(context.Background(), false)
	f.records = orders("A", "B", "C")
	snap, cached := ctrl.Get(context.Background(), true)

	if cached {
		t.Error("forced Get must not be served from cache")
	}
	if snap.TotalOrders != 3 {
		t.Errorf("got %d orders, want 3", snap.TotalOrders)
	}
	if f.calls != 2 {
		t.Errorf("expected two fetches, got %d", f.calls)
	}
}

func TestGetFallsBackToStaleOnError(t *testing.T) {
	f := &fakeFetcher{records: orders("A", "B")}
	ctrl := newTestController(t, f)

	ctrl.Get(context.Background(), false)

	f.err = errors.New("feed down")
	snap, cached := ctrl.Get(context.Background(), true)

	if !cached {
		t.Error("fallback snapshot must be reported as cached")
	}
	if snap.TotalOrders != 2 {
		t.Errorf("expected last known snapshot, got %d orders", snap.TotalOrders)
	}
	if ctrl.Status().LastError == "" {
		t.Error("fetch failure must be recorded in status")
	}
}

func TestGetFallsBackToEmptyWhenNothingCached(t *testing.T) {
	f := &fakeFetcher{err: errors.New("feed down")}
	ctrl := newTestController(t, f)

	snap, cached := ctrl.Get(context.Background(), false)

	if cached {
		t.Error("empty fallback is not a cache hit")
	}
	if snap == nil || snap.TotalOrders != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
	if snap.TopStates == nil {
		t.Error("empty fallback must be fully populated")
	}
}

func TestSuccessfulRefreshClearsLastError(t *testing.T) {
	f := &fakeFetcher{err: errors.New("feed down")}
	ctrl := newTestController(t, f)

	ctrl.Get(context.Background(), false)
	if ctrl.Status().LastError == "" {
		t.Fatal("expected recorded error")
	}

	f.err = nil
	f.records = orders("A")
	ctrl.Get(context.Background(), true)

	st := ctrl.Status()
	if st.LastError != "" {
		t.Errorf("error must clear after success, got %q", st.LastError)
	}
	if st.LastUpdated == nil {
		t.Error("lastUpdated must be set after success")
	}
}

func TestSubscribeSeesRefreshJitterAndPatch(t *testing.T) {
	f := &fakeFetcher{records: orders("A", "B")}
	ctrl := newTestController(t, f)

	var published []*models.Snapshot
	ctrl.Subscribe(func(s *models.Snapshot) { published = append(published, s) })

	ctrl.Get(context.Background(), false)
	ctrl.ApplyJitter()
	if _, err := ctrl.ApplyPatch(map[string]interface{}{"totalOrders": 99}); err != nil {
		t.Fatalf("patch: %v", err)
	}

	if len(published) != 3 {
		t.Fatalf("expected 3 published snapshots, got %d", len(published))
	}
	if published[2].TotalOrders != 99 {
		t.Errorf("patched snapshot not published, got %d", published[2].TotalOrders)
	}
}

func TestApplyJitterNoopWithoutSnapshot(t *testing.T) {
	ctrl := newTestController(t, &fakeFetcher{})

	called := false
	ctrl.Subscribe(func(*models.Snapshot) { called = true })
	ctrl.ApplyJitter()

	if called {
		t.Error("jitter with no snapshot must publish nothing")
	}
}

func TestApplyPatchUpdatesCurrent(t *testing.T) {
	f := &fakeFetcher{records: orders("A")}
	ctrl := newTestController(t, f)
	ctrl.Get(context.Background(), false)

	next, err := ctrl.ApplyPatch(map[string]interface{}{"totalRevenue": 123456})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if next.TotalRevenue != 123456 {
		t.Errorf("patched revenue = %d", next.TotalRevenue)
	}

	cur, ok := ctrl.Current()
	if !ok || cur.TotalRevenue != 123456 {
		t.Errorf("Current must reflect the patch, got %+v ok=%v", cur, ok)
	}
}
