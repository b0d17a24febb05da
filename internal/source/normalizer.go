// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package source

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/datapulse/datapulse/internal/models"
)

// Canonical column names after header normalization.
const (
	colOrderID      = "order_id"
	colOrderDate    = "order_date"
	colCustomerName = "customer_name"
	colEmailID      = "email_id"
	colState        = "state"
	colCity         = "city"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	// emailRe is the same permissive local@domain.tld shape the dashboard
	// always used: no whitespace, exactly one @, a dot in the domain.
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// dateLayouts are tried in order when parsing order_date values.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"02-01-2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// NormalizeHeader canonicalizes one raw header cell: trimmed, case-folded,
// runs of whitespace collapsed to underscores. The three spellings of the
// email column ("email id", "email_id", "emailid") all unify to email_id.
func NormalizeHeader(header string) string {
	clean := strings.ToLower(strings.TrimSpace(header))
	if clean == "email id" || clean == "email_id" || clean == "emailid" {
		return colEmailID
	}
	return whitespaceRe.ReplaceAllString(clean, "_")
}

// NormalizeRows converts raw CSV rows into Records, preserving source order.
// header supplies the raw column names; rows shorter than the header are
// padded with empty values, longer rows have their extra cells ignored.
func NormalizeRows(header []string, rows [][]string) []models.Record {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = NormalizeHeader(h)
	}

	records := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		fields := make(map[string]string, len(cols))
		for i, col := range cols {
			if i < len(row) {
				fields[col] = row[i]
			} else {
				fields[col] = ""
			}
		}
		records = append(records, normalizeRecord(fields))
	}
	return records
}

// normalizeRecord applies the per-field normalization contract to one row.
func normalizeRecord(fields map[string]string) models.Record {
	return models.Record{
		OrderID:      parseOrderID(fields[colOrderID]),
		OrderDate:    parseOrderDate(fields[colOrderDate]),
		CustomerName: strings.TrimSpace(fields[colCustomerName]),
		EmailID:      normalizeEmail(fields[colEmailID]),
		State:        defaultUnknown(fields[colState]),
		City:         defaultUnknown(fields[colCity]),
	}
}

// parseOrderID parses an order ID as an integer; unparseable values become 0.
func parseOrderID(v string) int {
	id, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return id
}

// parseOrderDate parses an order date in UTC, trying each known layout.
// Returns nil when no layout matches; such records stay in the totals but
// are excluded from date-bucketed series.
func parseOrderDate(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// normalizeEmail trims and lowercases the value, keeping the lowercased form
// only when it passes the basic shape check; invalid values keep the trimmed
// original so the data table still shows what the feed contained.
func normalizeEmail(v string) string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	if emailRe.MatchString(lower) {
		return lower
	}
	return trimmed
}

// defaultUnknown trims the value, substituting "Unknown" for empty cells.
func defaultUnknown(v string) string {
	if trimmed := strings.TrimSpace(v); trimmed != "" {
		return trimmed
	}
	return "Unknown"
}
