package main

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// TestPositionOpenLongRoundTrip runs a futures long round trip:
// contract_size=0.01, leverage=10, opening 2 contracts at 30571.1 then
// closing 1 at 30567.9.
func TestPositionOpenLongRoundTrip(t *testing.T) {
	inst := mustInstrument(t, InstFutures, 0.01)
	p := NewPosition(inst, BuyLong, 10)

	if err := p.Open(30571.1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.OpenNum() != 2 {
		t.Fatalf("expected OPEN_NUM 2, got %d", p.OpenNum())
	}
	if !almostEqual(p.Margin(), 61.1422, 1e-3) {
		t.Errorf("expected Margin ~61.1422, got %v", p.Margin())
	}
	if !almostEqual(p.Loan(), 550.2798, 1e-2) {
		t.Errorf("expected Loan ~550.2798, got %v", p.Loan())
	}

	returned, err := p.Close(30567.9, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantReturn := 30.5711 + (30567.9-30571.1)*0.01
	if !almostEqual(returned, wantReturn, 1e-3) {
		t.Errorf("expected close return ~%v, got %v", wantReturn, returned)
	}
	if p.OpenNum() != 1 {
		t.Fatalf("expected OPEN_NUM 1 after closing one, got %d", p.OpenNum())
	}
	if !almostEqual(p.Margin(), 30.5711, 1e-3) {
		t.Errorf("expected Margin ~30.5711 after partial close, got %v", p.Margin())
	}
	if !almostEqual(p.Loan(), 275.1399, 1e-2) {
		t.Errorf("expected Loan ~275.1399 after partial close, got %v", p.Loan())
	}
	if p.Status() != PositionOpen {
		t.Errorf("expected status OPEN with one contract remaining, got %s", p.Status())
	}
}

func TestPositionShortProfitOnClose(t *testing.T) {
	inst := mustInstrument(t, InstFutures, 0.01)
	p := NewPosition(inst, SellShort, 5)
	if err := p.Open(30580.8, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	returned, err := p.Close(30432.3, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	margin := 30580.8 * 0.01 / 5
	wantDelta := (30580.8 - 30432.3) * 0.01
	if !almostEqual(returned, margin+wantDelta, 1e-6) {
		t.Errorf("expected %v, got %v", margin+wantDelta, returned)
	}
}

func TestPositionCloseRejectsOutOfRangeNum(t *testing.T) {
	inst := mustInstrument(t, InstFutures, 0.01)
	p := NewPosition(inst, BuyLong, 10)
	_ = p.Open(100, 1)
	if _, err := p.Close(100, 2); err == nil {
		t.Error("expected error closing more contracts than are open")
	}
	if _, err := p.Close(100, 0); err == nil {
		t.Error("expected error closing zero contracts")
	}
}

func TestPositionUProfitAndMarginRate(t *testing.T) {
	inst := mustInstrument(t, InstFutures, 0.01)
	p := NewPosition(inst, BuyLong, 10)
	_ = p.Open(30000, 1)

	// Mark above open: positive UProfit for a long.
	up := p.UProfit(30300)
	if !almostEqual(up, 0.01*(30300-30000), 1e-9) {
		t.Errorf("expected UProfit %v, got %v", 0.01*(30300-30000), up)
	}

	rate, err := p.MarginRate(30300, 0.004, 0.0005)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantDenom := 0.01 * 1 * 30300 * (0.004 + 0.0005)
	wantRate := (p.Margin() + up) / wantDenom
	if !almostEqual(rate, wantRate, 1e-9) {
		t.Errorf("expected MarginRate %v, got %v", wantRate, rate)
	}

	// Mark crashing against the long drives MarginRate toward/ below 1.0.
	crashRate, err := p.MarginRate(1000, 0.004, 0.0005)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if crashRate > 0 {
		t.Errorf("expected a deeply negative margin rate on a crashed long, got %v", crashRate)
	}
}

func TestPositionOpenRejectsClosedPosition(t *testing.T) {
	inst := mustInstrument(t, InstFutures, 0.01)
	p := NewPosition(inst, BuyLong, 10)
	_ = p.Open(100, 1)
	_, _ = p.Close(100, 1)
	if p.Status() != PositionClose {
		t.Fatalf("expected CLOSE status, got %s", p.Status())
	}
	if err := p.Open(100, 1); err == nil {
		t.Error("expected error opening on a CLOSE position")
	}
}

func TestPositionMatches(t *testing.T) {
	inst := mustInstrument(t, InstFutures, 0.01)
	p := NewPosition(inst, BuyLong, 10)
	order, _ := NewOrder(inst, OrderTypeMarket, BuyLong, ActionOpen, 10, 1, 0)
	if !p.Matches(order) {
		t.Error("expected position to match an order with the same instrument/leverage/direction")
	}
	other, _ := NewOrder(inst, OrderTypeMarket, SellShort, ActionClose, 10, 1, 0)
	if p.Matches(other) {
		t.Error("expected position not to match an order with a different direction")
	}
}
