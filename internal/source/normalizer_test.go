// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package source

import (
	"testing"
	"time"
)

func TestNormalizeHeader(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Order ID", "order_id"},
		{"  order id  ", "order_id"},
		{"ORDER   DATE", "order_date"},
		{"Customer Name", "customer_name"},
		{"Email ID", "email_id"},
		{"email_id", "email_id"},
		{"EmailID", "email_id"},
		{"State", "state"},
		{"city", "city"},
		{"Some  Odd\tColumn", "some_odd_column"},
	}
	for _, tc := range cases {
		if got := NormalizeHeader(tc.in); got != tc.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeRowsFieldContract(t *testing.T) {
	header := []string{"Order ID", "Order Date", "Customer Name", "Email ID", "State", "City"}
	rows := [][]string{
		{"101", "2026-01-15", "  Alice  ", "ALICE@Example.COM", "Texas", "Austin"},
		{"abc", "not a date", "Bob", "not-an-email", "", ""},
		{"102", "", "Carol"},
	}

	records := NormalizeRows(header, rows)
	if len(records) != 3 {
		t.Fatalf("got %d records", len(records))
	}

	a := records[0]
	if a.OrderID != 101 || a.CustomerName != "Alice" {
		t.Errorf("record 0 = %+v", a)
	}
	if a.EmailID != "alice@example.com" {
		t.Errorf("valid email must lowercase, got %q", a.EmailID)
	}
	if !a.HasDate() || !a.OrderDate.Equal(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", a.OrderDate)
	}

	b := records[1]
	if b.OrderID != 0 {
		t.Errorf("unparseable order id must become 0, got %d", b.OrderID)
	}
	if b.HasDate() {
		t.Error("unparseable date must stay nil")
	}
	if b.EmailID != "not-an-email" {
		t.Errorf("invalid email keeps trimmed original, got %q", b.EmailID)
	}
	if b.State != "Unknown" || b.City != "Unknown" {
		t.Errorf("empty state/city must default to Unknown, got %q/%q", b.State, b.City)
	}

	c := records[2]
	if c.EmailID != "" || c.State != "Unknown" {
		t.Errorf("short row must pad missing columns, got %+v", c)
	}
}

func TestNormalizeRowsPreservesOrder(t *testing.T) {
	header := []string{"Order ID", "Customer Name"}
	rows := [][]string{{"3", "C"}, {"1", "A"}, {"2", "B"}}

	records := NormalizeRows(header, rows)
	for i, want := range []int{3, 1, 2} {
		if records[i].OrderID != want {
			t.Errorf("records[%d].OrderID = %d, want %d", i, records[i].OrderID, want)
		}
	}
}

func TestParseOrderDateLayouts(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2026-03-05", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2026-03-05 14:30:00", time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)},
		{"2026-03-05T14:30:00Z", time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)},
		{"03/05/2026", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"3/5/2026", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"05-03-2026", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"March 5, 2026", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"Mar 5, 2026", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got := parseOrderDate(tc.in)
		if got == nil {
			t.Errorf("parseOrderDate(%q) = nil", tc.in)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("parseOrderDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "soon", "2026-13-45"} {
		if got := parseOrderDate(bad); got != nil {
			t.Errorf("parseOrderDate(%q) = %v, want nil", bad, got)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"User@Example.COM", "user@example.com"},
		{"  user@example.com  ", "user@example.com"},
		{"not an email", "not an email"},
		{"two@@example.com", "two@@example.com"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := normalizeEmail(tc.in); got != tc.want {
			t.Errorf("normalizeEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
