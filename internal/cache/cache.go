// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

// Package cache persists the current metrics snapshot across restarts.
//
// The cache holds exactly one value under one key. Reads are served from an
// in-memory copy; BadgerDB only backs persistence, so storage failures
// degrade to a cache miss, never an error surfaced to callers.
package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/datapulse/datapulse/internal/config"
	"github.com/datapulse/datapulse/internal/logging"
	"github.com/datapulse/datapulse/internal/metrics"
	"github.com/datapulse/datapulse/internal/models"
)

// ErrStorage marks persistence-layer failures. It is logged, counted and
// swallowed inside this package; exported for tests that exercise the
// degraded path directly.
var ErrStorage = errors.New("snapshot storage failed")

// snapshotKey is the single slot the cache occupies, carried over from the
// browser-era localStorage key so operators recognize it in the data dir.
const snapshotKey = "dashboard_data_cache"

// entry is the persisted envelope: the snapshot plus its write time.
type entry struct {
	Data      *models.Snapshot `json:"data"`
	Timestamp int64            `json:"timestamp"`
}

// SnapshotCache is a single-slot TTL cache for the dashboard snapshot.
//
// Get returns the snapshot only while it is fresher than the TTL; Stale
// ignores the TTL so the refresh path can fall back to old data when the
// feed is down. All methods are safe for concurrent use.
type SnapshotCache struct {
	mu      sync.RWMutex
	current *entry

	db  *badger.DB
	ttl time.Duration
	now func() time.Time
}

// Open creates the cache, opening (or creating) the BadgerDB directory and
// loading any previously persisted snapshot. An empty path selects Badger's
// in-memory mode.
func Open(cfg *config.CacheConfig) (*SnapshotCache, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithLogger(nil).
		WithInMemory(cfg.Path == "")

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot cache: %w", err)
	}

	c := &SnapshotCache{
		db:  db,
		ttl: cfg.TTL,
		now: time.Now,
	}
	c.loadPersisted()
	return c, nil
}

// Close releases the underlying store.
func (c *SnapshotCache) Close() error {
	return c.db.Close()
}

// Get returns the cached snapshot when present and fresher than the TTL.
// The second return reports a hit.
func (c *SnapshotCache) Get() (*models.Snapshot, bool) {
	c.mu.RLock()
	cur := c.current
	c.mu.RUnlock()

	if cur == nil || c.expired(cur) {
		metrics.SnapshotCacheMisses.Inc()
		return nil, false
	}
	metrics.SnapshotCacheHits.Inc()
	return cur.Data, true
}

// Stale returns the last stored snapshot regardless of age, for fallback
// when a refetch fails. The second return reports presence.
func (c *SnapshotCache) Stale() (*models.Snapshot, bool) {
	c.mu.RLock()
	cur := c.current
	c.mu.RUnlock()

	if cur == nil {
		return nil, false
	}
	return cur.Data, true
}

// Put stores the snapshot as the new cached value and persists it. The
// in-memory slot is always updated; a persistence failure is logged and
// absorbed so callers never see it.
func (c *SnapshotCache) Put(snap *models.Snapshot) {
	e := &entry{Data: snap, Timestamp: c.now().UnixMilli()}

	c.mu.Lock()
	c.current = e
	c.mu.Unlock()

	if err := c.persist(e); err != nil {
		logging.Warn().Err(err).Msg("snapshot not persisted, continuing with in-memory copy")
	}
}

// Swap replaces the in-memory snapshot without touching persistence or the
// freshness clock. Used by the cosmetic jitter pass and assistant-driven
// data patches, which must not extend the cached value's lifetime.
func (c *SnapshotCache) Swap(snap *models.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		c.current = &entry{Data: snap, Timestamp: 0}
		return
	}
	c.current = &entry{Data: snap, Timestamp: c.current.Timestamp}
}

// expired reports whether the entry is older than the TTL.
func (c *SnapshotCache) expired(e *entry) bool {
	age := c.now().UnixMilli() - e.Timestamp
	return age >= c.ttl.Milliseconds()
}

// persist writes the entry to the store.
func (c *SnapshotCache) persist(e *entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%w: encode: %s", ErrStorage, err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(snapshotKey), raw)
	})
	if err != nil {
		return fmt.Errorf("%w: write: %s", ErrStorage, err)
	}
	return nil
}

// loadPersisted restores the slot from the store at startup. Any failure
// (missing key, corrupt value) leaves the cache empty.
func (c *SnapshotCache) loadPersisted() {
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(snapshotKey))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return
	}
	if err != nil {
		logging.Warn().Err(fmt.Errorf("%w: read: %s", ErrStorage, err)).
			Msg("persisted snapshot unreadable, starting empty")
		return
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil || e.Data == nil {
		logging.Warn().Err(err).Msg("persisted snapshot corrupt, starting empty")
		return
	}

	c.mu.Lock()
	c.current = &e
	c.mu.Unlock()
	logging.Info().
		Time("storedAt", time.UnixMilli(e.Timestamp)).
		Msg("restored persisted snapshot")
}
