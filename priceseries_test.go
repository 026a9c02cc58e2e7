package main

import (
	"errors"
	"testing"
)

func newTestPricePoint(t *testing.T, rows []PriceRow, maxInterval int64) *PricePoint {
	t.Helper()
	dir := t.TempDir()
	writePriceChunk(t, dir, 0, rows[0].Timestamp, rows[len(rows)-1].Timestamp+100000, rows)
	pp, err := NewPricePoint(dir, "BTC-USDT", maxInterval)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return pp
}

// TestPricePointLatestAtOrBeforeClock picks the largest row with
// timestamp <= clock.
func TestPricePointLatestAtOrBeforeClock(t *testing.T) {
	pp := newTestPricePoint(t, []PriceRow{
		{Timestamp: 1000, Value: floatPtr(100)},
		{Timestamp: 2000, Value: floatPtr(110)},
		{Timestamp: 3000, Value: floatPtr(120)},
	}, 60000)

	got, err := pp.Value(2500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 110 {
		t.Errorf("expected the 2000 row's value 110 at clock 2500, got %v", got)
	}

	got, err = pp.Value(3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 120 {
		t.Errorf("expected 120 at clock 3000, got %v", got)
	}
}

// TestPricePointNoPriorDataPoint fails when every row is after the clock.
func TestPricePointNoPriorDataPoint(t *testing.T) {
	dir := t.TempDir()
	writePriceChunk(t, dir, 0, 1000, 100000, []PriceRow{
		{Timestamp: 5000, Value: floatPtr(100)},
	})
	pp, err := NewPricePoint(dir, "BTC-USDT", 60000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := pp.Value(2000); !errors.Is(err, ErrNoPriorDataPoint) {
		t.Errorf("expected ErrNoPriorDataPoint, got %v", err)
	}
}

// TestPricePointStalenessGuard fails once the latest row is older than the
// max interval.
func TestPricePointStalenessGuard(t *testing.T) {
	pp := newTestPricePoint(t, []PriceRow{
		{Timestamp: 1000, Value: floatPtr(100)},
	}, 5000)

	if _, err := pp.Value(4000); err != nil {
		t.Fatalf("unexpected error within the staleness window: %v", err)
	}
	if _, err := pp.Value(50000); !errors.Is(err, ErrDataGapExceeded) {
		t.Errorf("expected ErrDataGapExceeded, got %v", err)
	}
}

// TestPricePointNullValue fails when the selected row carries a null value.
func TestPricePointNullValue(t *testing.T) {
	pp := newTestPricePoint(t, []PriceRow{
		{Timestamp: 1000, Value: nil},
	}, 60000)

	if _, err := pp.Value(1500); !errors.Is(err, ErrNullValue) {
		t.Errorf("expected ErrNullValue, got %v", err)
	}
}

// TestPricePointArithmetic checks the named arithmetic helpers, in
// particular that multiplication is symmetric (the original's reversed
// multiply divided instead; here both directions multiply).
func TestPricePointArithmetic(t *testing.T) {
	pp := newTestPricePoint(t, []PriceRow{
		{Timestamp: 1000, Value: floatPtr(50)},
	}, 60000)

	if v, err := pp.Mul(1000, 2); err != nil || v != 100 {
		t.Errorf("expected Mul(2) = 100, got %v (err %v)", v, err)
	}
	if v, err := pp.Add(1000, 5); err != nil || v != 55 {
		t.Errorf("expected Add(5) = 55, got %v (err %v)", v, err)
	}
	if v, err := pp.Sub(1000, 10); err != nil || v != 40 {
		t.Errorf("expected Sub(10) = 40, got %v (err %v)", v, err)
	}
	if v, err := pp.Div(1000, 4); err != nil || v != 12.5 {
		t.Errorf("expected Div(4) = 12.5, got %v (err %v)", v, err)
	}
	if _, err := pp.Div(1000, 0); err == nil {
		t.Error("expected an error dividing by zero")
	}
}
