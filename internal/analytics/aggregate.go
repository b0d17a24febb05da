// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/datapulse/datapulse/internal/metrics"
	"github.com/datapulse/datapulse/internal/models"
)

// DefaultCategories is the fixed label set for the synthetic per-category
// revenue split.
var DefaultCategories = []string{
	"Electronics", "Clothing", "Home & Garden", "Books", "Sports", "Beauty",
}

// Ranking caps.
const (
	topGroupLimit     = 10
	distributionLimit = 6
)

// Aggregator computes Metrics Snapshots from normalized records.
type Aggregator struct {
	estimator  RevenueEstimator
	categories []string
}

// New creates an Aggregator. A nil estimator selects the default
// deterministic one.
func New(estimator RevenueEstimator) *Aggregator {
	if estimator == nil {
		estimator = NewSeededEstimator()
	}
	return &Aggregator{estimator: estimator, categories: DefaultCategories}
}

// Aggregate derives a complete Snapshot from the records in one pass plus
// grouping passes. Zero records yields a fully-populated zero snapshot:
// every count 0, every list empty, no division by zero.
func (a *Aggregator) Aggregate(records []models.Record) *models.Snapshot {
	start := time.Now()
	defer func() {
		metrics.AggregationDuration.Observe(time.Since(start).Seconds())
	}()

	if len(records) == 0 {
		return emptySnapshot()
	}

	totalOrders := len(records)

	// Synthetic per-order revenue; see RevenueEstimator.
	revenuePerOrder := make([]int64, totalOrders)
	var totalRevenue int64
	for i, rec := range records {
		revenuePerOrder[i] = a.estimator.OrderRevenue(rec, i)
		totalRevenue += revenuePerOrder[i]
	}
	avgOrderValue := round2(float64(totalRevenue) / float64(totalOrders))

	// Customer order counts drive retention and frequency metrics.
	customerOrders := map[string]int{}
	for _, rec := range records {
		customerOrders[rec.CustomerName]++
	}
	uniqueCustomers := len(customerOrders)

	repeatCustomers := 0
	for _, n := range customerOrders {
		if n > 1 {
			repeatCustomers++
		}
	}
	retentionRate := 0
	if uniqueCustomers > 0 {
		retentionRate = int(math.Round(float64(repeatCustomers) / float64(uniqueCustomers) * 100))
	}

	// Email coverage counts every non-empty email value, validated or not,
	// matching the dashboard's historical definition.
	withEmails := 0
	uniqueEmails := map[string]struct{}{}
	for _, rec := range records {
		if rec.HasEmail() {
			withEmails++
			uniqueEmails[rec.EmailID] = struct{}{}
		}
	}
	emailCoverage := int(math.Round(float64(withEmails) / float64(totalOrders) * 100))

	topStates := rankGroups(records, func(r models.Record) string { return r.State })
	topCities := rankGroups(records, func(r models.Record) string { return r.City })

	revenueByDate, growthTrend := bucketByDay(records, revenuePerOrder)

	snapshot := &models.Snapshot{
		TotalOrders:     totalOrders,
		TotalRevenue:    totalRevenue,
		UniqueCustomers: uniqueCustomers,
		AvgOrderValue:   avgOrderValue,
		EmailMetrics: models.EmailMetrics{
			TotalWithEmails: withEmails,
			UniqueEmails:    len(uniqueEmails),
			EmailCoverage:   emailCoverage,
		},
		TopStates:           capGroups(topStates, topGroupLimit),
		TopCities:           capGroups(topCities, topGroupLimit),
		RevenueByDate:       revenueByDate,
		OrdersTimeline:      revenueByDate,
		StateDistribution:   capGroups(topStates, distributionLimit),
		CityDistribution:    capGroups(topCities, distributionLimit),
		CustomerGrowthTrend: growthTrend,
		RevenueByCategory:   a.categoryRevenue(totalRevenue, totalOrders),
		OrderFrequencyData:  frequencyBands(customerOrders),
		CustomerRetentionMetrics: models.RetentionMetrics{
			RetentionRate:    retentionRate,
			ChurnRate:        100 - retentionRate,
			RepeatCustomers:  repeatCustomers,
			OneTimeCustomers: uniqueCustomers - repeatCustomers,
		},
		RawData:     records,
		LastUpdated: time.Now().UTC(),
	}

	return snapshot
}

// emptySnapshot returns the zero-valued Snapshot served when no records
// exist: all counts 0, all ratios 0, all lists empty (not nil, so the JSON
// contract stays stable).
func emptySnapshot() *models.Snapshot {
	return &models.Snapshot{
		TopStates:           []models.NameCount{},
		TopCities:           []models.NameCount{},
		RevenueByDate:       []models.DateRevenue{},
		OrdersTimeline:      []models.DateRevenue{},
		StateDistribution:   []models.NameCount{},
		CityDistribution:    []models.NameCount{},
		CustomerGrowthTrend: []models.GrowthPoint{},
		RevenueByCategory:   []models.CategoryRevenue{},
		OrderFrequencyData:  []models.FrequencyBand{},
		RawData:             []models.Record{},
		LastUpdated:         time.Now().UTC(),
	}
}

// rankGroups counts records per group key and ranks them by count
// descending. Ties keep first-appearance order: the group whose first
// record occurs earlier in the input sorts first.
func rankGroups(records []models.Record, key func(models.Record) string) []models.NameCount {
	counts := map[string]int{}
	firstSeen := map[string]int{}
	order := []string{}

	for i, rec := range records {
		k := key(rec)
		if _, ok := counts[k]; !ok {
			firstSeen[k] = i
			order = append(order, k)
		}
		counts[k]++
	}

	ranked := make([]models.NameCount, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, models.NameCount{Name: name, Value: counts[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		return firstSeen[ranked[i].Name] < firstSeen[ranked[j].Name]
	})
	return ranked
}

// capGroups returns at most limit entries of the ranked list.
func capGroups(groups []models.NameCount, limit int) []models.NameCount {
	if len(groups) <= limit {
		out := make([]models.NameCount, len(groups))
		copy(out, groups)
		return out
	}
	out := make([]models.NameCount, limit)
	copy(out, groups[:limit])
	return out
}

// dayBucket accumulates one UTC calendar day.
type dayBucket struct {
	revenue   int64
	orders    int
	customers map[string]struct{}
}

// bucketByDay groups dated records into UTC calendar-day buckets and
// derives both the revenue series and the customer growth trend. Records
// without a parseable date are skipped here (they still count in totals).
//
// The growth trend's cumulative figure is a running sum of each day's
// new-customer count, not a distinct count across days. That is the
// dashboard's defined (if debatable) behavior; keep it until stakeholders
// sign off on a change.
func bucketByDay(records []models.Record, revenuePerOrder []int64) ([]models.DateRevenue, []models.GrowthPoint) {
	buckets := map[string]*dayBucket{}
	for i, rec := range records {
		if !rec.HasDate() {
			continue
		}
		day := rec.OrderDate.UTC().Format("2006-01-02")
		b, ok := buckets[day]
		if !ok {
			b = &dayBucket{customers: map[string]struct{}{}}
			buckets[day] = b
		}
		b.revenue += revenuePerOrder[i]
		b.orders++
		b.customers[rec.CustomerName] = struct{}{}
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	revenueByDate := make([]models.DateRevenue, 0, len(days))
	growth := make([]models.GrowthPoint, 0, len(days))
	cumulative := 0
	for _, day := range days {
		b := buckets[day]
		revenueByDate = append(revenueByDate, models.DateRevenue{
			Date:    day,
			Revenue: b.revenue,
			Orders:  b.orders,
		})
		cumulative += len(b.customers)
		growth = append(growth, models.GrowthPoint{
			Date:                day,
			NewCustomers:        len(b.customers),
			CumulativeCustomers: cumulative,
		})
	}
	return revenueByDate, growth
}

// categoryRevenue spreads synthetic revenue across the fixed category set:
// each category gets a 5% floor plus up to 30% of the total, sorted by
// revenue descending.
func (a *Aggregator) categoryRevenue(totalRevenue int64, totalOrders int) []models.CategoryRevenue {
	out := make([]models.CategoryRevenue, 0, len(a.categories))
	for _, cat := range a.categories {
		revFrac := a.estimator.Fraction(cat + ":revenue")
		ordFrac := a.estimator.Fraction(cat + ":orders")
		out = append(out, models.CategoryRevenue{
			Name:    cat,
			Revenue: int64(revFrac*0.3*float64(totalRevenue)) + int64(0.05*float64(totalRevenue)),
			Orders:  int(ordFrac*0.3*float64(totalOrders)) + int(0.05*float64(totalOrders)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Revenue > out[j].Revenue })
	return out
}

// frequencyBands buckets customers by order count using the fixed band
// boundaries. Bands with no customers are omitted; band order is stable.
func frequencyBands(customerOrders map[string]int) []models.FrequencyBand {
	bands := []struct {
		label string
		match func(int) bool
	}{
		{"1 order", func(n int) bool { return n == 1 }},
		{"2-3 orders", func(n int) bool { return n >= 2 && n <= 3 }},
		{"4-5 orders", func(n int) bool { return n >= 4 && n <= 5 }},
		{"6-10 orders", func(n int) bool { return n >= 6 && n <= 10 }},
		{"10+ orders", func(n int) bool { return n > 10 }},
	}

	counts := make([]int, len(bands))
	for _, n := range customerOrders {
		for i, band := range bands {
			if band.match(n) {
				counts[i]++
				break
			}
		}
	}

	out := []models.FrequencyBand{}
	for i, band := range bands {
		if counts[i] > 0 {
			out = append(out, models.FrequencyBand{Range: band.label, Customers: counts[i]})
		}
	}
	return out
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
