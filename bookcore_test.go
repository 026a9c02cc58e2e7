package main

import "testing"

func TestOrderBookApplyOrdering(t *testing.T) {
	b := NewOrderBook("BTC-USDT", 10)
	prices := []float64{100, 105, 110, 95}
	for _, p := range prices {
		if err := b.Apply(SideAsk, p, 1, 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	for i := 0; i < b.Asks.Len()-1; i++ {
		if !(b.Asks.At(i).Price < b.Asks.At(i+1).Price) {
			t.Errorf("asks not strictly ascending at %d: %v >= %v", i, b.Asks.At(i).Price, b.Asks.At(i+1).Price)
		}
	}

	for _, p := range prices {
		if err := b.Apply(SideBid, p, 1, 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	for i := 0; i < b.Bids.Len()-1; i++ {
		if !(b.Bids.At(i).Price > b.Bids.At(i+1).Price) {
			t.Errorf("bids not strictly descending at %d: %v <= %v", i, b.Bids.At(i).Price, b.Bids.At(i+1).Price)
		}
	}
}

func TestOrderBookIdempotence(t *testing.T) {
	b1 := NewOrderBook("BTC-USDT", 10)
	b2 := NewOrderBook("BTC-USDT", 10)
	_ = b1.Apply(SideAsk, 100, 5, 2)
	_ = b1.Apply(SideAsk, 100, 5, 2)
	_ = b2.Apply(SideAsk, 100, 5, 2)
	if !b1.Equal(b2) {
		t.Error("applying the same set() twice should be equivalent to applying it once")
	}
}

func TestOrderBookRemoval(t *testing.T) {
	b := NewOrderBook("BTC-USDT", 10)
	_ = b.Apply(SideAsk, 100, 5, 1)
	if err := b.Apply(SideAsk, 100, 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Asks.Len() != 0 {
		t.Errorf("expected level removed, got %d levels", b.Asks.Len())
	}
	// Removing an absent level is a no-op.
	if err := b.Apply(SideAsk, 999, 0, 0); err != nil {
		t.Fatalf("unexpected error removing absent level: %v", err)
	}
}

func TestOrderBookMaxDepthTruncation(t *testing.T) {
	b := NewOrderBook("BTC-USDT", 3)
	for _, p := range []float64{100, 101, 102, 103, 104} {
		_ = b.Apply(SideAsk, p, 1, 1)
	}
	if b.Asks.Len() != 3 {
		t.Fatalf("expected max depth 3, got %d", b.Asks.Len())
	}
	if b.Asks.At(0).Price != 100 || b.Asks.At(2).Price != 102 {
		t.Errorf("expected lowest 3 asks retained, got %v/%v/%v", b.Asks.At(0).Price, b.Asks.At(1).Price, b.Asks.At(2).Price)
	}
}

// TestBookUpdateScenario replays a snapshot followed by a batch of updates
// (replace, remove, replace) and checks the resulting ladder.
func TestBookUpdateScenario(t *testing.T) {
	b := NewOrderBook("BTC-USDT", 400)
	prices := []float64{100, 105, 110, 115, 120, 125, 130, 135, 140, 145}
	sizes := []float64{83, 19, 63, 10, 10, 53, 43, 47, 60, 47}
	counts := []int64{1, 3, 2, 9, 10, 8, 8, 6, 3, 5}
	for i := range prices {
		if err := b.Apply(SideAsk, prices[i], sizes[i], counts[i]); err != nil {
			t.Fatalf("snapshot row %d: %v", i, err)
		}
	}

	updates := []struct {
		price float64
		size  float64
		count int64
	}{
		{100, 69, 5},
		{110, 0, 0},
		{140, 70, 7},
	}
	for _, u := range updates {
		if err := b.Apply(SideAsk, u.price, u.size, u.count); err != nil {
			t.Fatalf("update %v: %v", u, err)
		}
	}

	wantPrices := []float64{100, 105, 115, 120, 125, 130, 135, 140, 145}
	wantSizes := []float64{69, 19, 10, 10, 53, 43, 47, 70, 47}
	if b.Asks.Len() != len(wantPrices) {
		t.Fatalf("expected %d levels, got %d", len(wantPrices), b.Asks.Len())
	}
	for i := range wantPrices {
		lvl := b.Asks.At(i)
		if lvl.Price != wantPrices[i] || lvl.Size != wantSizes[i] {
			t.Errorf("level %d: got (price=%v,size=%v), want (price=%v,size=%v)", i, lvl.Price, lvl.Size, wantPrices[i], wantSizes[i])
		}
	}
}

func TestOrderBookCloneIsDeep(t *testing.T) {
	b := NewOrderBook("BTC-USDT", 10)
	_ = b.Apply(SideAsk, 100, 5, 1)
	clone := b.Clone()
	_ = b.Apply(SideAsk, 100, 10, 2)
	if clone.Asks.At(0).Size != 5 {
		t.Errorf("clone should be unaffected by later mutation, got size %v", clone.Asks.At(0).Size)
	}
}
