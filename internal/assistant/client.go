// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package assistant

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/datapulse/datapulse/internal/config"
	"github.com/datapulse/datapulse/internal/logging"
	"github.com/datapulse/datapulse/internal/metrics"
	"github.com/datapulse/datapulse/internal/models"
)

// ErrTransport marks webhook failures: network errors, timeouts and non-2xx
// statuses. The chat pipeline falls back to local command handling when it
// sees this.
var ErrTransport = errors.New("assistant webhook failed")

const (
	userAgent        = "DataPulse-Chatbot/1.0"
	maxReplyBodySize = 1 << 20
)

// DashboardContext is the snapshot summary sent with every chat turn so the
// automation flow can answer questions about the data it has not seen.
type DashboardContext struct {
	CurrentView    string     `json:"currentView"`
	LastDataUpdate *time.Time `json:"lastDataUpdate,omitempty"`
	HasData        bool       `json:"hasData"`

	TotalOrders     int      `json:"totalOrders,omitempty"`
	TotalRevenue    int64    `json:"totalRevenue,omitempty"`
	UniqueCustomers int      `json:"uniqueCustomers,omitempty"`
	AvgOrderValue   float64  `json:"avgOrderValue,omitempty"`
	TopStates       []string `json:"topStates,omitempty"`
	TopCities       []string `json:"topCities,omitempty"`
	DataPoints      int      `json:"dataPoints,omitempty"`
	HasEmailData    bool     `json:"hasEmailData,omitempty"`

	Message string `json:"message,omitempty"`
}

// BuildContext summarizes the snapshot for the webhook payload. A nil
// snapshot produces the minimal no-data context.
func BuildContext(snap *models.Snapshot, activeView string, lastUpdated *time.Time) DashboardContext {
	if activeView == "" {
		activeView = models.DefaultView
	}
	if snap == nil {
		return DashboardContext{
			CurrentView: activeView,
			HasData:     false,
			Message:     "No data available",
		}
	}

	hasEmail := false
	for _, rec := range snap.RawData {
		if rec.HasEmail() {
			hasEmail = true
			break
		}
	}

	return DashboardContext{
		CurrentView:     activeView,
		LastDataUpdate:  lastUpdated,
		HasData:         true,
		TotalOrders:     snap.TotalOrders,
		TotalRevenue:    snap.TotalRevenue,
		UniqueCustomers: snap.UniqueCustomers,
		AvgOrderValue:   snap.AvgOrderValue,
		TopStates:       topNames(snap.TopStates, 3),
		TopCities:       topNames(snap.TopCities, 3),
		DataPoints:      len(snap.RawData),
		HasEmailData:    hasEmail,
	}
}

func topNames(groups []models.NameCount, limit int) []string {
	if len(groups) < limit {
		limit = len(groups)
	}
	names := make([]string, 0, limit)
	for _, g := range groups[:limit] {
		names = append(names, g.Name)
	}
	return names
}

// payload is the webhook request body.
type payload struct {
	Message          string           `json:"message"`
	Timestamp        string           `json:"timestamp"`
	UserID           string           `json:"userId"`
	DashboardContext DashboardContext `json:"dashboardContext"`
}

// Result is one successful webhook exchange. Data is the decoded reply (an
// object, or a bare string when the flow answers one); Raw keeps the exact
// body for diagnostics.
type Result struct {
	Data interface{}
	Raw  string
}

// Sender is the interface the chat pipeline depends on.
type Sender interface {
	Send(ctx context.Context, message string, dctx DashboardContext) (*Result, error)
}

// Client posts chat turns to the configured automation webhook.
type Client struct {
	url    string
	userID string
	client *http.Client
	cb     *gobreaker.CircuitBreaker[*Result]
}

// NewClient creates a webhook client from configuration.
func NewClient(cfg *config.AssistantConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cbName := "assistant-webhook"
	cb := gobreaker.NewCircuitBreaker[*Result](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("assistant circuit breaker state change")
		},
	})

	return &Client{
		url:    cfg.WebhookURL,
		userID: cfg.UserID,
		client: &http.Client{Timeout: timeout},
		cb:     cb,
	}
}

// Configured reports whether a webhook URL is set. Unconfigured deployments
// run chat entirely on local command handling.
func (c *Client) Configured() bool {
	return c.url != ""
}

// Send posts one chat turn. A reply body that is not valid JSON is not an
// error: the flow answered plain text, which is wrapped so the rest of the
// pipeline sees a uniform shape.
func (c *Client) Send(ctx context.Context, message string, dctx DashboardContext) (*Result, error) {
	start := time.Now()
	res, err := c.cb.Execute(func() (*Result, error) {
		return c.sendOnce(ctx, message, dctx)
	})
	metrics.AssistantRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AssistantRequests.WithLabelValues("error").Inc()
		if errors.Is(err, ErrTransport) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrTransport, err)
	}
	metrics.AssistantRequests.WithLabelValues("ok").Inc()
	return res, nil
}

func (c *Client) sendOnce(ctx context.Context, message string, dctx DashboardContext) (*Result, error) {
	body, err := json.Marshal(payload{
		Message:          message,
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		UserID:           c.userID,
		DashboardContext: dctx,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %s", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %s", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read reply: %s", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrTransport, resp.StatusCode, string(raw))
	}

	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		// Plain-text reply. Wrap it in the object shape the flow usually
		// sends so downstream extraction stays uniform.
		data = map[string]interface{}{
			"reply":   string(raw),
			"message": string(raw),
			"success": true,
		}
	}

	logging.Debug().Int("bytes", len(raw)).Msg("assistant webhook replied")
	return &Result{Data: data, Raw: string(raw)}, nil
}
