// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

// Package api is the HTTP surface of the DataPulse server: the dashboard
// snapshot endpoints, the chat endpoint and the websocket push channel,
// all wrapped in the standard response envelope.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/datapulse/datapulse/internal/config"
	"github.com/datapulse/datapulse/internal/dispatch"
	"github.com/datapulse/datapulse/internal/logging"
	"github.com/datapulse/datapulse/internal/metrics"
	"github.com/datapulse/datapulse/internal/refresh"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler bundles the dependencies the HTTP surface needs.
type Handler struct {
	ctrl *refresh.Controller
	disp *dispatch.Dispatcher
	hub  *Hub
}

// NewHandler creates the API handler set.
func NewHandler(ctrl *refresh.Controller, disp *dispatch.Dispatcher, hub *Hub) *Handler {
	return &Handler{ctrl: ctrl, disp: disp, hub: hub}
}

// NewRouter builds the chi router with the full middleware stack.
func NewRouter(cfg *config.ServerConfig, h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.health)
		r.With(routeMetrics("dashboard")).Get("/dashboard", h.dashboard)
		r.With(routeMetrics("dashboard_refresh")).Post("/dashboard/refresh", h.dashboardRefresh)
		r.With(routeMetrics("records")).Get("/records", h.records)
		r.With(routeMetrics("insights")).Get("/insights", h.insights)
		r.With(routeMetrics("view")).Get("/view", h.viewGet)
		r.With(routeMetrics("view")).Put("/view", h.viewPut)
		r.With(routeMetrics("ui")).Get("/ui", h.uiState)
		r.With(routeMetrics("chat")).Post("/chat", h.chat)
		r.Get("/ws", h.hub.serveWS)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, codeNotFound, "route not found")
	})

	return r
}

// requestLogger logs one line per request in the global logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("requestId", middleware.GetReqID(r.Context())).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// routeMetrics records per-route request counts and latency.
func routeMetrics(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			metrics.APIRequestsTotal.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
			metrics.APIRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		})
	}
}
