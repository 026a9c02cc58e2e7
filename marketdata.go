// FILE: marketdata.go
// Package main – MarketData bundle: the single read surface a Strategy sees
// each tick. Four typed accessor methods, each lazily constructing and
// caching the per-instrument stream object on first use.
package main

import "fmt"

// MarketData is the per-tick read surface exposed to strategies: order
// books, mark prices, index prices, and derived mid-price trackers, each
// keyed by instrument and refreshed lazily at the simulation clock.
type MarketData struct {
	booksRoot       string
	markPricesRoot  string
	indexPricesRoot string

	maxDepth           int
	bookMaxInterval    int64
	priceMaxInterval   int64
	midWindow          int

	books      map[string]*BookReplay
	markPrices *priceSeriesBundle
	idxPrices  *priceSeriesBundle
	mabidasks  map[string]*MidPriceTracker
}

// NewMarketData builds a MarketData bundle rooted at root (containing the
// books/, markprices/, and indexprices/ subdirectories).
func NewMarketData(root string, maxDepth int, bookMaxInterval, priceMaxInterval int64, midWindow int) *MarketData {
	join := func(sub string) string { return root + "/" + sub }
	return &MarketData{
		booksRoot:        join("books"),
		markPricesRoot:   join("markprices"),
		indexPricesRoot:  join("indexprices"),
		maxDepth:         maxDepth,
		bookMaxInterval:  bookMaxInterval,
		priceMaxInterval: priceMaxInterval,
		midWindow:        midWindow,
		books:            map[string]*BookReplay{},
		markPrices:       newPriceSeriesBundle(join("markprices"), priceMaxInterval),
		idxPrices:        newPriceSeriesBundle(join("indexprices"), priceMaxInterval),
		mabidasks:        map[string]*MidPriceTracker{},
	}
}

// Book returns (creating on first use) the BookReplay for inst, advanced to
// clock.
func (m *MarketData) Book(inst *Instrument, clock int64) (*BookReplay, error) {
	br, ok := m.books[inst.InstID]
	if !ok {
		var err error
		br, err = NewBookReplay(m.booksRoot+"/"+inst.InstID, inst.InstID, m.maxDepth, m.bookMaxInterval)
		if err != nil {
			return nil, err
		}
		m.books[inst.InstID] = br
	}
	if err := br.Update(clock); err != nil {
		return nil, err
	}
	return br, nil
}

// MarkPrice returns the latest mark price for inst at clock, falling back to
// the book's rolling mid-price whenever the mark-price stream itself is
// unavailable.
func (m *MarketData) MarkPrice(inst *Instrument, clock int64) (float64, error) {
	pp, err := m.markPrices.get(inst)
	if err == nil {
		var v float64
		v, err = pp.Value(clock)
		if err == nil {
			return v, nil
		}
	}
	mid, midErr := m.MidPrice(inst, clock)
	if midErr != nil {
		return 0, fmt.Errorf("mark price unavailable (%w) and mid-price fallback failed: %w", err, midErr)
	}
	return mid, nil
}

// IndexPrice returns the latest index price for inst at clock.
func (m *MarketData) IndexPrice(inst *Instrument, clock int64) (float64, error) {
	pp, err := m.idxPrices.get(inst)
	if err != nil {
		return 0, err
	}
	return pp.Value(clock)
}

// TradePrice returns the book's rolling mid-price for inst at clock, used
// by the delivery sweep when index-price data is unavailable.
func (m *MarketData) TradePrice(inst *Instrument, clock int64) (float64, error) {
	return m.MidPrice(inst, clock)
}

// MidPrice returns (creating on first use) the rolling mid-price average for
// inst at clock.
func (m *MarketData) MidPrice(inst *Instrument, clock int64) (float64, error) {
	mt, ok := m.mabidasks[inst.InstID]
	if !ok {
		var err error
		mt, err = NewMidPriceTracker(m.booksRoot+"/"+inst.InstID, inst.InstID, m.midWindow, m.bookMaxInterval)
		if err != nil {
			return 0, err
		}
		m.mabidasks[inst.InstID] = mt
	}
	return mt.Now(clock)
}
