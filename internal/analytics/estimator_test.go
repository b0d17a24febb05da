// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package analytics

import (
	"testing"

	"github.com/datapulse/datapulse/internal/models"
)

func TestSeededEstimatorDeterministic(t *testing.T) {
	est := NewSeededEstimator()
	r := models.Record{OrderID: 42, CustomerName: "Alice"}

	if a, b := est.OrderRevenue(r, 3), est.OrderRevenue(r, 3); a != b {
		t.Errorf("same input gave %d then %d", a, b)
	}
	if a, b := est.Fraction("Books:revenue"), est.Fraction("Books:revenue"); a != b {
		t.Errorf("same key gave %v then %v", a, b)
	}
}

func TestSeededEstimatorRange(t *testing.T) {
	est := NewSeededEstimator()
	for i := 0; i < 1000; i++ {
		rev := est.OrderRevenue(models.Record{OrderID: i, CustomerName: "c"}, i)
		if rev < minOrderRevenue || rev >= minOrderRevenue+revenueSpread {
			t.Fatalf("revenue %d out of [%d, %d)", rev, minOrderRevenue, minOrderRevenue+revenueSpread)
		}
	}
}

func TestSeededEstimatorFractionRange(t *testing.T) {
	est := NewSeededEstimator()
	for _, key := range []string{"a", "b", "Electronics:orders", ""} {
		f := est.Fraction(key)
		if f < 0 || f >= 1 {
			t.Errorf("Fraction(%q) = %v, want [0, 1)", key, f)
		}
	}
}

func TestSeededEstimatorVariesByIndex(t *testing.T) {
	est := NewSeededEstimator()
	r := models.Record{OrderID: 1, CustomerName: "Alice"}
	if est.OrderRevenue(r, 0) == est.OrderRevenue(r, 1) {
		t.Error("expected different revenue for different positions")
	}
}
