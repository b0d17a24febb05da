// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package refresh

import (
	"context"
	"time"

	"github.com/datapulse/datapulse/internal/config"
	"github.com/datapulse/datapulse/internal/logging"
)

// Service is the periodic refresh loop, run under the supervision tree. An
// initial refresh happens immediately so the dashboard has data as soon as
// the process is up; afterwards each tick is a cache-first Get, so the feed
// is only refetched when the cached snapshot has aged out.
type Service struct {
	ctrl     *Controller
	interval time.Duration
}

// NewService creates the refresh loop from configuration.
func NewService(ctrl *Controller, cfg *config.RefreshConfig) *Service {
	return &Service{ctrl: ctrl, interval: cfg.Interval}
}

// Serve implements suture.Service.
func (s *Service) Serve(ctx context.Context) error {
	logging.Info().Dur("interval", s.interval).Msg("refresh loop started")

	s.ctrl.Get(ctx, false)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.ctrl.Get(ctx, false)
		}
	}
}

func (s *Service) String() string { return "refresh-loop" }

// JitterService is the liveliness loop: on each tick it republishes the
// current snapshot with its headline figures nudged within ±5%. Purely
// cosmetic; it never touches the feed or the persisted cache entry.
type JitterService struct {
	ctrl     *Controller
	interval time.Duration
}

// NewJitterService creates the liveliness loop from configuration.
func NewJitterService(ctrl *Controller, cfg *config.RefreshConfig) *JitterService {
	return &JitterService{ctrl: ctrl, interval: cfg.JitterInterval}
}

// Serve implements suture.Service.
func (s *JitterService) Serve(ctx context.Context) error {
	logging.Info().Dur("interval", s.interval).Msg("jitter loop started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.ctrl.ApplyJitter()
		}
	}
}

func (s *JitterService) String() string { return "jitter-loop" }
