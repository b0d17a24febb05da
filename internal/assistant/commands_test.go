// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package assistant

import (
	"strings"
	"testing"

	"github.com/datapulse/datapulse/internal/models"
)

func sampleSnapshot() *models.Snapshot {
	return &models.Snapshot{
		TotalOrders:     120,
		TotalRevenue:    1234567,
		UniqueCustomers: 80,
		TopStates:       []models.NameCount{{Name: "Maharashtra", Value: 40}},
		RawData: []models.Record{
			{OrderID: 1, CustomerName: "A", EmailID: "a@example.com"},
			{OrderID: 2, CustomerName: "B"},
		},
	}
}

func TestHandleLocalCommand(t *testing.T) {
	snap := sampleSnapshot()
	cases := []struct {
		message    string
		wantType   string
		wantAction string
		wantTarget string
	}{
		{"please refresh", "refresh", "refresh", ""},
		{"UPDATE the numbers", "refresh", "refresh", ""},
		{"show data please", "navigate", "navigate", "data"},
		{"open the data table", "navigate", "navigate", "data"},
		{"back to dashboard", "navigate", "navigate", "dashboard"},
		{"give me an overview", "navigate", "navigate", "dashboard"},
		{"how is revenue doing", "insight", "highlight", "revenue"},
		{"any email contacts?", "insight", "navigate", "data"},
		{"tell me a joke", "general", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.message, func(t *testing.T) {
			got := HandleLocalCommand(tc.message, snap)
			if got.Type != tc.wantType || got.Action != tc.wantAction || got.Target != tc.wantTarget {
				t.Errorf("got %+v, want type=%s action=%s target=%s", got, tc.wantType, tc.wantAction, tc.wantTarget)
			}
			if got.Response == "" {
				t.Error("every command reply needs text")
			}
		})
	}
}

func TestHandleLocalCommandRevenueNeedsData(t *testing.T) {
	got := HandleLocalCommand("revenue?", nil)
	if got.Type != "general" {
		t.Errorf("revenue question without data must fall through, got %+v", got)
	}
}

func TestHandleLocalCommandEmailWithoutData(t *testing.T) {
	snap := &models.Snapshot{RawData: []models.Record{{OrderID: 1, CustomerName: "A"}}}
	got := HandleLocalCommand("email?", snap)
	if got.Action != "refresh" {
		t.Errorf("missing email data must suggest refresh, got %+v", got)
	}
}

func TestHandleLocalCommandRevenueFormatting(t *testing.T) {
	got := HandleLocalCommand("revenue", sampleSnapshot())
	if !strings.Contains(got.Response, "₹12,34,567") {
		t.Errorf("expected Indian grouping in %q", got.Response)
	}
}

func TestInsights(t *testing.T) {
	insights := Insights(sampleSnapshot())

	joined := strings.Join(insights, "\n")
	for _, want := range []string{
		"Total revenue is ₹12,34,567",
		"Top performing state: Maharashtra",
		"80 unique customers served",
		"Email contacts available for 1 customers",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing insight %q in %v", want, insights)
		}
	}
	if !strings.Contains(insights[len(insights)-1], "Ask me about") {
		t.Error("capabilities hint must come last")
	}
}

func TestInsightsWithoutData(t *testing.T) {
	insights := Insights(nil)
	if len(insights) != 2 {
		t.Fatalf("expected the two no-data hints, got %v", insights)
	}
}

func TestFormatINR(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{12345, "12,345"},
		{123456, "1,23,456"},
		{1234567, "12,34,567"},
		{123456789, "12,34,56,789"},
		{-1234567, "-12,34,567"},
	}
	for _, tc := range cases {
		if got := formatINR(tc.in); got != tc.want {
			t.Errorf("formatINR(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
