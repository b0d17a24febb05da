// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/datapulse/datapulse/internal/config"
)

const feedCSV = `Order ID,Order Date,Customer Name,Email ID,State,City
101,2026-01-15,Alice,alice@example.com,Texas,Austin
102,2026-01-16,Bob,,California,Fresno

103,2026-01-16,Alice,alice@example.com,Texas,Austin
`

func testSourceConfig(url string) *config.SourceConfig {
	return &config.SourceConfig{
		URL:              url,
		Timeout:          5 * time.Second,
		MinFetchInterval: time.Millisecond,
	}
}

func TestFetchParsesFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if accept := r.Header.Get("Accept"); accept != "text/csv" {
			t.Errorf("Accept = %q", accept)
		}
		_, _ = w.Write([]byte(feedCSV))
	}))
	defer srv.Close()

	records, err := NewClient(testSourceConfig(srv.URL)).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("got %d records (blank line must be skipped)", len(records))
	}
	if records[0].OrderID != 101 || records[0].CustomerName != "Alice" {
		t.Errorf("record 0 = %+v", records[0])
	}
	if records[1].EmailID != "" {
		t.Errorf("record 1 email = %q", records[1].EmailID)
	}
}

func TestFetchEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	records, err := NewClient(testSourceConfig(srv.URL)).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("empty body must yield zero records, got %d", len(records))
	}
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(testSourceConfig(srv.URL)).Fetch(context.Background())
	if !errors.Is(err, ErrSourceFetch) {
		t.Errorf("err = %v, want ErrSourceFetch", err)
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error must carry the status: %v", err)
	}
}

func TestFetchBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(testSourceConfig(srv.URL))
	for i := 0; i < 5; i++ {
		if _, err := client.Fetch(context.Background()); err == nil {
			t.Fatalf("fetch %d unexpectedly succeeded", i)
		}
	}

	// Breaker is now open; the next call must fail fast without a request.
	start := time.Now()
	_, err := client.Fetch(context.Background())
	if !errors.Is(err, ErrSourceFetch) {
		t.Errorf("err = %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("open breaker must fail fast")
	}
}

func TestParseCSVRaggedRows(t *testing.T) {
	raw := "Order ID,Customer Name,State\n1,Alice\n2,Bob,TX,extra\n"
	records, err := parseCSV(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records", len(records))
	}
	if records[0].State != "Unknown" {
		t.Errorf("short row state = %q", records[0].State)
	}
	if records[1].State != "TX" {
		t.Errorf("long row state = %q", records[1].State)
	}
}
