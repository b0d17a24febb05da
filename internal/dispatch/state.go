// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package dispatch

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/datapulse/datapulse/internal/models"
)

// maxNotifications bounds the retained notification history.
const maxNotifications = 50

// Notification is one assistant-raised message shown in the dashboard shell.
type Notification struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Level     string    `json:"level"`
	CreatedAt time.Time `json:"createdAt"`
}

// UIState is the server-held dashboard shell state: which view is active,
// which KPIs are highlighted, the active filters and pending notifications.
type UIState struct {
	ActiveView    string                 `json:"activeView"`
	Highlights    []string               `json:"highlights"`
	Filters       map[string]interface{} `json:"filters"`
	Extra         map[string]interface{} `json:"extra,omitempty"`
	Notifications []Notification         `json:"notifications"`
}

// StateStore holds the UIState behind a mutex. Reads return copies; the
// stored value is never aliased out.
type StateStore struct {
	mu    sync.RWMutex
	state UIState
}

// NewStateStore returns a store with the default view active.
func NewStateStore() *StateStore {
	return &StateStore{state: UIState{
		ActiveView: models.DefaultView,
		Highlights: []string{},
		Filters:    map[string]interface{}{},
	}}
}

// Snapshot returns a copy of the current state.
func (s *StateStore) Snapshot() UIState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.state)
}

// ActiveView returns the currently selected view.
func (s *StateStore) ActiveView() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ActiveView
}

// SetActiveView switches the selected view. Unknown identifiers are stored
// as-is; the frontend renders them as an empty placeholder rather than
// failing the instruction.
func (s *StateStore) SetActiveView(view string) {
	if view == "" {
		view = models.DefaultView
	}
	s.mu.Lock()
	s.state.ActiveView = view
	s.mu.Unlock()
}

// SetHighlights replaces the highlighted KPI set.
func (s *StateStore) SetHighlights(kpis []string) {
	s.mu.Lock()
	s.state.Highlights = append([]string{}, kpis...)
	s.mu.Unlock()
}

// AddHighlight adds one KPI to the highlighted set, deduplicated.
func (s *StateStore) AddHighlight(kpi string) {
	if kpi == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.Highlights {
		if existing == kpi {
			return
		}
	}
	s.state.Highlights = append(s.state.Highlights, kpi)
}

// MergeFilters overlays the given filters onto the active set. A nil value
// removes the filter key.
func (s *StateStore) MergeFilters(filters map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range filters {
		if v == nil {
			delete(s.state.Filters, k)
			continue
		}
		s.state.Filters[k] = v
	}
}

// MergeExtra overlays free-form UI fields the assistant controls directly.
func (s *StateStore) MergeExtra(updates map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Extra == nil {
		s.state.Extra = map[string]interface{}{}
	}
	for k, v := range updates {
		s.state.Extra[k] = v
	}
}

// Notify appends a notification, trimming the oldest past the cap.
func (s *StateStore) Notify(text, level string) Notification {
	if level == "" {
		level = "info"
	}
	n := Notification{
		ID:        uuid.NewString(),
		Text:      text,
		Level:     level,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.state.Notifications = append(s.state.Notifications, n)
	if len(s.state.Notifications) > maxNotifications {
		s.state.Notifications = s.state.Notifications[len(s.state.Notifications)-maxNotifications:]
	}
	s.mu.Unlock()
	return n
}

func copyState(st UIState) UIState {
	out := UIState{
		ActiveView:    st.ActiveView,
		Highlights:    append([]string{}, st.Highlights...),
		Filters:       make(map[string]interface{}, len(st.Filters)),
		Notifications: append([]Notification{}, st.Notifications...),
	}
	for k, v := range st.Filters {
		out.Filters[k] = v
	}
	if st.Extra != nil {
		out.Extra = make(map[string]interface{}, len(st.Extra))
		for k, v := range st.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
