// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package analytics

import (
	"hash/fnv"
	"math"
	"strconv"

	"github.com/datapulse/datapulse/internal/models"
)

// Revenue bounds for one synthetic order, in INR (the original dashboard's
// 50-500 USD demo range at 83 INR/USD).
const (
	minOrderRevenue = 4150
	revenueSpread   = 41500
)

// RevenueEstimator supplies the synthetic revenue figures the feed lacks.
//
// The feed has no revenue column, so these numbers are demo placeholders,
// not business data. The interface isolates that incompleteness: swap in an
// estimator backed by a real revenue field once the feed grows one.
type RevenueEstimator interface {
	// OrderRevenue returns the revenue figure for the record at the given
	// position in the input.
	OrderRevenue(rec models.Record, index int) int64

	// Fraction returns a reproducible pseudo-random value in [0, 1) for the
	// given key, used to spread synthetic figures across categories.
	Fraction(key string) float64
}

// seededEstimator is the default RevenueEstimator. It hashes stable record
// attributes so the same input always yields the same figures; repeated
// aggregation must not invent new revenue (the cache depends on that).
type seededEstimator struct{}

// NewSeededEstimator returns the default deterministic estimator.
func NewSeededEstimator() RevenueEstimator {
	return seededEstimator{}
}

func (seededEstimator) OrderRevenue(rec models.Record, index int) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strconv.Itoa(rec.OrderID)))
	_, _ = h.Write([]byte{'|'})
	_, _ = h.Write([]byte(rec.CustomerName))
	_, _ = h.Write([]byte{'|'})
	_, _ = h.Write([]byte(strconv.Itoa(index)))
	return minOrderRevenue + int64(h.Sum64()%revenueSpread)
}

func (seededEstimator) Fraction(key string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return float64(h.Sum64()) / float64(math.MaxUint64)
}
