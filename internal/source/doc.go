// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

// Package source fetches the published CSV order feed and normalizes its
// rows into models.Record values.
//
// The client wraps the HTTP fetch in a circuit breaker (sony/gobreaker) and
// throttles real refetches with a rate limiter; the snapshot cache in front
// of it means most reads never reach this package. Fetch and parse failures
// are reported as ErrSourceFetch and are recovered upstream by falling back
// to the cached snapshot. This package never retries.
package source
