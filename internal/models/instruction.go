// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package models

// CustomAction is one named action requested by the assistant.
// Type identifies the action ("highlight_kpi", "show_notification",
// "update_filters"); Params carries the remaining fields of the action
// object verbatim. Unknown types are logged and skipped by the dispatcher.
type CustomAction struct {
	Type   string                 `json:"type"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// UpdateInstruction is the structured set of UI-affecting effects derived
// from one assistant turn. Fields are independent: a single instruction may
// request several effects at once, and absent fields keep their zero value.
type UpdateInstruction struct {
	ShouldRefreshData   bool                   `json:"shouldRefreshData"`
	ShouldNavigateTo    string                 `json:"shouldNavigateTo,omitempty"`
	DataUpdates         map[string]interface{} `json:"dataUpdates,omitempty"`
	UIUpdates           map[string]interface{} `json:"uiUpdates,omitempty"`
	ShouldHighlightKPIs []string               `json:"shouldHighlightKPIs,omitempty"`
	ShouldUpdateFilters map[string]interface{} `json:"shouldUpdateFilters,omitempty"`
	CustomActions       []CustomAction         `json:"customActions,omitempty"`
}

// Empty reports whether the instruction requests no effect at all.
func (u UpdateInstruction) Empty() bool {
	return !u.ShouldRefreshData &&
		u.ShouldNavigateTo == "" &&
		len(u.DataUpdates) == 0 &&
		len(u.UIUpdates) == 0 &&
		len(u.ShouldHighlightKPIs) == 0 &&
		len(u.ShouldUpdateFilters) == 0 &&
		len(u.CustomActions) == 0
}
