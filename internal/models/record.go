// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package models

import "time"

// Record is one normalized order row from the CSV feed.
//
// Normalization rules (applied by internal/source):
//   - OrderID parses as an integer; unparseable values become 0
//   - OrderDate is nil when the source value cannot be parsed; such records
//     are excluded from date-bucketed series but still counted in totals
//   - EmailID is trimmed, and lowercased when it passes the basic
//     local@domain.tld shape check; otherwise the trimmed original is kept
//   - State and City default to "Unknown" when empty or missing
//
// OrderID uniqueness is NOT enforced at this layer. Duplicate IDs are
// possible in the feed and must not break aggregation.
type Record struct {
	OrderID      int        `json:"order_id"`
	OrderDate    *time.Time `json:"order_date,omitempty"`
	CustomerName string     `json:"customer_name"`
	EmailID      string     `json:"email_id,omitempty"`
	State        string     `json:"state"`
	City         string     `json:"city"`
}

// HasDate reports whether the record carries a parseable order date.
func (r Record) HasDate() bool {
	return r.OrderDate != nil
}

// HasEmail reports whether the record carries a non-empty email value
// (validated or not), matching the original dashboard's coverage rule.
func (r Record) HasEmail() bool {
	return r.EmailID != ""
}
