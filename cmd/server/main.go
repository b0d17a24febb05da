// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

// Command server runs the DataPulse analytics backend: it periodically
// ingests the published CSV order feed, aggregates it into dashboard
// metrics, and serves the REST API, websocket push channel and chat
// assistant endpoint.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/datapulse/datapulse/internal/analytics"
	"github.com/datapulse/datapulse/internal/api"
	"github.com/datapulse/datapulse/internal/assistant"
	"github.com/datapulse/datapulse/internal/cache"
	"github.com/datapulse/datapulse/internal/config"
	"github.com/datapulse/datapulse/internal/dispatch"
	"github.com/datapulse/datapulse/internal/logging"
	"github.com/datapulse/datapulse/internal/refresh"
	"github.com/datapulse/datapulse/internal/source"
	"github.com/datapulse/datapulse/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("configuration load failed")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("sourceUrl", cfg.Source.URL).
		Bool("assistantConfigured", cfg.Assistant.WebhookURL != "").
		Msg("datapulse starting")

	snapshots, err := cache.Open(&cfg.Cache)
	if err != nil {
		logging.Fatal().Err(err).Msg("snapshot cache open failed")
	}
	defer func() { _ = snapshots.Close() }()

	feed := source.NewClient(&cfg.Source)
	ctrl := refresh.NewController(feed, analytics.New(nil), snapshots)

	chatClient := assistant.NewClient(&cfg.Assistant)
	disp := dispatch.NewDispatcher(chatClient, chatClient.Configured(), ctrl, dispatch.NewStateStore())

	hub := api.NewHub()
	ctrl.Subscribe(hub.BroadcastSnapshot)

	router := api.NewRouter(&cfg.Server, api.NewHandler(ctrl, disp, hub))

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddData(refresh.NewService(ctrl, &cfg.Refresh))
	if cfg.Refresh.JitterEnabled {
		tree.AddData(refresh.NewJitterService(ctrl, &cfg.Refresh))
	}
	tree.AddAPI(hub)
	tree.AddAPI(supervisor.NewHTTPService(&cfg.Server, router))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := tree.Root.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor exited")
		os.Exit(1)
	}
	logging.Info().Msg("datapulse stopped")
}
