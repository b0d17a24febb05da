// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

// Package models defines the shared data types used across DataPulse:
//
//   - Record: one normalized order row from the CSV feed
//   - Snapshot: the full set of metrics derived from all current records
//   - UpdateInstruction: UI-affecting effects extracted from one assistant turn
//   - APIResponse: standardized HTTP response envelope
//
// Snapshot JSON field names are camelCase because they form the wire
// contract with the browser dashboard, which consumes them directly.
package models
