// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package analytics

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/datapulse/datapulse/internal/models"
)

// Jitter returns a copy of the snapshot with the headline KPIs nudged by a
// single random factor within ±5%, simulating live movement between feed
// refreshes. Only totalOrders, totalRevenue, uniqueCustomers, avgOrderValue
// and lastUpdated change; every derived series keeps its real values.
func Jitter(s *models.Snapshot) *models.Snapshot {
	return applyJitter(s, 1+(rand.Float64()*0.1-0.05))
}

func applyJitter(s *models.Snapshot, factor float64) *models.Snapshot {
	out := *s
	out.TotalOrders = int(math.Floor(float64(s.TotalOrders) * factor))
	out.TotalRevenue = int64(math.Floor(float64(s.TotalRevenue) * factor))
	out.UniqueCustomers = int(math.Floor(float64(s.UniqueCustomers) * factor))
	out.AvgOrderValue = round2(s.AvgOrderValue * factor)
	out.LastUpdated = time.Now().UTC()
	return &out
}
