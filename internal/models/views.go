// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package models

// Dashboard view identifiers. These are the only views the frontend renders;
// any other identifier falls through to an empty "not found" view rather
// than an error, so navigation instructions from the assistant are accepted
// unvalidated (deliberate soft-fail).
const (
	ViewDashboard = "dashboard"
	ViewAnalytics = "analytics"
	ViewData      = "data"
	ViewProfile   = "profile"
	ViewSettings  = "settings"
)

// DefaultView is the view rendered when none (or an empty one) is selected.
const DefaultView = ViewDashboard

// KnownView reports whether the identifier names a view the frontend
// actually renders.
func KnownView(view string) bool {
	switch view {
	case ViewDashboard, ViewAnalytics, ViewData, ViewProfile, ViewSettings:
		return true
	}
	return false
}
