// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

// Package analytics derives a Metrics Snapshot from normalized order
// records.
//
// Aggregation is a pure function of its input: no I/O, no external state.
// The one non-obvious seam is revenue. The order feed carries no revenue
// column, so per-order figures are synthesized behind the RevenueEstimator
// interface; the default estimator is deterministic so repeated aggregation
// of the same input produces identical snapshots. A real deployment should
// replace the estimator with one backed by an actual revenue field.
package analytics
