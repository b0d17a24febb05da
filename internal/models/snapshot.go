// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package models

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// NameCount is a ranked group entry (state or city name with its order count).
type NameCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// DateRevenue is one calendar-day bucket of the revenue time series.
// Date is a UTC day key in YYYY-MM-DD form.
type DateRevenue struct {
	Date    string `json:"date"`
	Revenue int64  `json:"revenue"`
	Orders  int    `json:"orders"`
}

// GrowthPoint is one calendar-day entry of the customer growth trend.
//
// CumulativeCustomers is a running sum of each day's new-customer count,
// NOT a distinct count across the whole history. This reproduces the
// dashboard's historical behavior; see DESIGN.md before changing it.
type GrowthPoint struct {
	Date                string `json:"date"`
	NewCustomers        int    `json:"newCustomers"`
	CumulativeCustomers int    `json:"cumulativeCustomers"`
}

// CategoryRevenue is one entry of the synthetic per-category revenue split.
type CategoryRevenue struct {
	Name    string `json:"name"`
	Revenue int64  `json:"revenue"`
	Orders  int    `json:"orders"`
}

// FrequencyBand buckets customers by how many orders they placed.
type FrequencyBand struct {
	Range     string `json:"range"`
	Customers int    `json:"customers"`
}

// EmailMetrics summarizes email coverage across all records.
type EmailMetrics struct {
	TotalWithEmails int `json:"totalWithEmails"`
	UniqueEmails    int `json:"uniqueEmails"`
	EmailCoverage   int `json:"emailCoverage"`
}

// RetentionMetrics holds the repeat-customer analysis.
// Invariants: OneTimeCustomers + RepeatCustomers == uniqueCustomers and
// RetentionRate + ChurnRate == 100 (both guarded against zero denominators).
type RetentionMetrics struct {
	RetentionRate    int `json:"retentionRate"`
	ChurnRate        int `json:"churnRate"`
	RepeatCustomers  int `json:"repeatCustomers"`
	OneTimeCustomers int `json:"oneTimeCustomers"`
}

// Snapshot is the full set of derived metrics computed from all current
// records. A Snapshot is created wholly inside one aggregation pass and is
// immutable afterwards: refresh, jitter and assistant patches all replace
// the whole value, never mutate it in place.
type Snapshot struct {
	TotalOrders     int          `json:"totalOrders"`
	TotalRevenue    int64        `json:"totalRevenue"`
	UniqueCustomers int          `json:"uniqueCustomers"`
	AvgOrderValue   float64      `json:"avgOrderValue"`
	EmailMetrics    EmailMetrics `json:"emailMetrics"`

	TopStates []NameCount `json:"topStates"`
	TopCities []NameCount `json:"topCities"`

	RevenueByDate  []DateRevenue `json:"revenueByDate"`
	OrdersTimeline []DateRevenue `json:"ordersTimeline"`

	StateDistribution []NameCount `json:"stateDistribution"`
	CityDistribution  []NameCount `json:"cityDistribution"`

	CustomerGrowthTrend []GrowthPoint     `json:"customerGrowthTrend"`
	RevenueByCategory   []CategoryRevenue `json:"revenueByCategory"`
	OrderFrequencyData  []FrequencyBand   `json:"orderFrequencyData"`

	CustomerRetentionMetrics RetentionMetrics `json:"customerRetentionMetrics"`

	RawData     []Record  `json:"rawData"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Merge produces a new Snapshot with the patch's fields shallowly replacing
// the corresponding snapshot fields. Patch keys use the snapshot's JSON
// names (the wire contract). Unknown keys are ignored rather than rejected
// so a partial patch from the assistant can never fail the whole batch.
// The receiver is not modified.
func (s *Snapshot) Merge(patch map[string]interface{}) (*Snapshot, error) {
	if len(patch) == 0 {
		out := *s
		return &out, nil
	}

	base, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, fmt.Errorf("explode snapshot: %w", err)
	}

	for key, val := range patch {
		raw, err := json.Marshal(val)
		if err != nil {
			// Skip unmarshalable values; the rest of the patch still applies.
			continue
		}
		fields[key] = raw
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("merge snapshot: %w", err)
	}

	out := &Snapshot{}
	if err := json.Unmarshal(merged, out); err != nil {
		return nil, fmt.Errorf("rebuild snapshot: %w", err)
	}
	return out, nil
}
