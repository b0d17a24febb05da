// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/datapulse/datapulse/internal/assistant"
	"github.com/datapulse/datapulse/internal/models"
)

// health reports liveness plus the refresh controller state.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"refresh": h.ctrl.Status(),
		"clients": h.hub.ClientCount(),
	}, models.Metadata{})
}

// dashboard serves the current snapshot, cache-first.
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	snap, cached := h.ctrl.Get(r.Context(), false)
	respond(w, http.StatusOK, snap, models.Metadata{
		Cached:      cached,
		QueryTimeMS: time.Since(start).Milliseconds(),
	})
}

// dashboardRefresh forces a refetch of the feed.
func (h *Handler) dashboardRefresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	snap, cached := h.ctrl.Get(r.Context(), true)
	respond(w, http.StatusOK, snap, models.Metadata{
		Cached:      cached,
		QueryTimeMS: time.Since(start).Milliseconds(),
	})
}

// records serves the normalized raw rows with optional offset/limit paging.
func (h *Handler) records(w http.ResponseWriter, r *http.Request) {
	snap, cached := h.ctrl.Get(r.Context(), false)
	rows := snap.RawData

	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		respondError(w, http.StatusBadRequest, codeValidation, "offset must be a non-negative integer")
		return
	}
	limit, err := queryInt(r, "limit", len(rows))
	if err != nil || limit < 0 {
		respondError(w, http.StatusBadRequest, codeValidation, "limit must be a non-negative integer")
		return
	}

	if offset > len(rows) {
		offset = len(rows)
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}

	respond(w, http.StatusOK, map[string]interface{}{
		"records": rows[offset:end],
		"total":   len(rows),
		"offset":  offset,
	}, models.Metadata{Cached: cached})
}

// insights serves the suggestion strings for the chat panel.
func (h *Handler) insights(w http.ResponseWriter, r *http.Request) {
	snap, _ := h.ctrl.Current()
	respond(w, http.StatusOK, map[string]interface{}{
		"insights": assistant.Insights(snap),
	}, models.Metadata{})
}

// viewGet reports the active dashboard view.
func (h *Handler) viewGet(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]interface{}{
		"activeView": h.disp.State().ActiveView(),
	}, models.Metadata{})
}

type viewRequest struct {
	View string `json:"view"`
}

// viewPut switches the active view. Unknown identifiers are accepted; the
// frontend renders them as a placeholder.
func (h *Handler) viewPut(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, "invalid JSON body")
		return
	}
	if req.View == "" {
		respondError(w, http.StatusBadRequest, codeValidation, "view is required")
		return
	}

	h.disp.State().SetActiveView(req.View)
	respond(w, http.StatusOK, map[string]interface{}{
		"activeView": h.disp.State().ActiveView(),
		"known":      models.KnownView(req.View),
	}, models.Metadata{})
}

// uiState serves the full dashboard shell state.
func (h *Handler) uiState(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.disp.State().Snapshot(), models.Metadata{})
}

type chatRequest struct {
	Message string `json:"message"`
}

// chat runs one assistant turn.
func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, "invalid JSON body")
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, codeValidation, "message is required")
		return
	}

	res, err := h.disp.Chat(r.Context(), req.Message)
	if err != nil {
		respondError(w, http.StatusBadGateway, codeAssistant, err.Error())
		return
	}
	respond(w, http.StatusOK, res, models.Metadata{})
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
