// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

// Package supervisor builds the suture supervision tree that keeps the
// background services (refresh loops, websocket hub, HTTP listener)
// running and restarted with backoff on failure.
package supervisor

import (
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// TreeConfig holds the restart policy shared by the whole tree.
type TreeConfig struct {
	FailureThreshold float64
	FailureDecay     float64
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

// Tree is the two-level supervision tree: a data layer for the snapshot
// loops and an api layer for the HTTP surface. Add children with AddData
// and AddAPI, then run the Root.
type Tree struct {
	Root *suture.Supervisor
	data *suture.Supervisor
	api  *suture.Supervisor
}

// NewTree builds the tree. Supervisor events are logged through the given
// slog logger (bridged to the global zerolog logger in practice).
func NewTree(logger *slog.Logger, cfg TreeConfig) *Tree {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.FailureDecay == 0 {
		cfg.FailureDecay = 30
	}
	if cfg.FailureBackoff == 0 {
		cfg.FailureBackoff = 15 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	// (&Handler{...}).MustHook() is the sutureslog API; the hook is
	// inherited by children added to the root.
	hook := (&sutureslog.Handler{Logger: logger}).MustHook()

	rootSpec := suture.Spec{
		EventHook:        hook,
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	}
	childSpec := suture.Spec{
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	}

	t := &Tree{
		Root: suture.New("datapulse", rootSpec),
		data: suture.New("data-layer", childSpec),
		api:  suture.New("api-layer", childSpec),
	}
	t.Root.Add(t.data)
	t.Root.Add(t.api)
	return t
}

// AddData adds a service to the data layer (refresh and jitter loops).
func (t *Tree) AddData(s suture.Service) {
	t.data.Add(s)
}

// AddAPI adds a service to the api layer (HTTP listener, websocket hub).
func (t *Tree) AddAPI(s suture.Service) {
	t.api.Add(s)
}
