// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/datapulse/datapulse/internal/config"
	"github.com/datapulse/datapulse/internal/logging"
	"github.com/datapulse/datapulse/internal/metrics"
	"github.com/datapulse/datapulse/internal/models"
)

// ErrSourceFetch marks any network, HTTP-status or parse failure while
// fetching the CSV feed. Callers test with errors.Is and fall back to the
// cached snapshot.
var ErrSourceFetch = errors.New("source fetch failed")

// maxErrorBodySize caps how much of an error response body is read for
// diagnostics.
const maxErrorBodySize = 16 * 1024

// Fetcher is the interface the refresh controller depends on. Implemented
// by Client in production and by fakes in tests.
type Fetcher interface {
	Fetch(ctx context.Context) ([]models.Record, error)
}

// Client fetches and parses the published CSV order feed.
//
// One fetch is one HTTP GET with a hard timeout, guarded by a circuit
// breaker so a dead feed fails fast instead of stalling every refresh, and
// by a rate limiter so forced refreshes cannot hammer the upstream export.
type Client struct {
	url     string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[[]models.Record]
	limiter *rate.Limiter
}

// NewClient creates a feed client from configuration.
func NewClient(cfg *config.SourceConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	minInterval := cfg.MinFetchInterval
	if minInterval <= 0 {
		minInterval = 5 * time.Second
	}

	cbName := "source-feed"
	cb := gobreaker.NewCircuitBreaker[[]models.Record](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("source circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	return &Client{
		url:     cfg.URL,
		client:  &http.Client{Timeout: timeout},
		cb:      cb,
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// Fetch retrieves the feed and returns normalized records in source order.
// Any failure is wrapped in ErrSourceFetch; this method does not retry.
func (c *Client) Fetch(ctx context.Context) ([]models.Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: throttled: %s", ErrSourceFetch, err)
	}

	start := time.Now()
	records, err := c.cb.Execute(func() ([]models.Record, error) {
		return c.fetchOnce(ctx)
	})
	if err != nil {
		reason := "fetch"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			reason = "breaker_open"
		}
		metrics.SourceFetchErrors.WithLabelValues(reason).Inc()
		if errors.Is(err, ErrSourceFetch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrSourceFetch, err)
	}

	metrics.SourceFetchDuration.Observe(time.Since(start).Seconds())
	logging.Debug().Int("records", len(records)).Dur("took", time.Since(start)).Msg("feed fetched")
	return records, nil
}

// fetchOnce performs a single GET + parse round trip.
func (c *Client) fetchOnce(ctx context.Context) ([]models.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %s", ErrSourceFetch, err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrSourceFetch, resp.StatusCode, string(body))
	}

	return parseCSV(resp.Body)
}

// parseCSV reads a delimited-text body with a header row into Records.
// Empty lines are skipped; ragged rows are tolerated.
func parseCSV(r io.Reader) ([]models.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []models.Record{}, nil
		}
		return nil, fmt.Errorf("%w: read header: %s", ErrSourceFetch, err)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parse row: %s", ErrSourceFetch, err)
		}
		if isEmptyRow(row) {
			continue
		}
		rows = append(rows, row)
	}

	return NormalizeRows(header, rows), nil
}

// isEmptyRow reports whether every cell in the row is blank.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// breakerStateValue converts a breaker state to its metric value.
func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
