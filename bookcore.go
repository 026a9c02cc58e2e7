// FILE: bookcore.go
// Package main – Per-instrument limit order book (asks ascending, bids
// descending), bounded to max_depth levels.
//
// A side is an ordered slice of BookLevel kept sorted by binary search +
// insert, equal levels are replaced in place, zero-size levels are removed,
// and the slice is truncated to max_depth on insert.
package main

import (
	"fmt"
	"sort"
)

// DefaultMaxDepth is the default number of levels retained per side.
const DefaultMaxDepth = 400

// BookLevel is one price level: price > 0, size >= 0, count >= 0. A level
// with size == 0 denotes removal and is never stored.
type BookLevel struct {
	Price float64
	Size  float64
	Count int64
}

func newBookLevel(price, size float64, count int64) (BookLevel, error) {
	if price <= 0 {
		return BookLevel{}, fmt.Errorf("book level price must be > 0, got %v", price)
	}
	if size < 0 {
		return BookLevel{}, fmt.Errorf("book level size must be >= 0, got %v", size)
	}
	if count < 0 {
		return BookLevel{}, fmt.Errorf("book level count must be >= 0, got %v", count)
	}
	return BookLevel{Price: price, Size: size, Count: count}, nil
}

// PriceEquals reports whether the level's price matches x; book membership
// compares by price only.
func (l BookLevel) PriceEquals(x float64) bool { return l.Price == x }

// TrueEqual compares price, size, and count.
func (l BookLevel) TrueEqual(other BookLevel) bool {
	return l.Price == other.Price && l.Size == other.Size && l.Count == other.Count
}

// bookSide is the shared ascending/descending level list behind Asks/Bids.
type bookSide struct {
	levels    []BookLevel
	maxDepth  int
	ascending bool
}

func newBookSide(ascending bool, maxDepth int) *bookSide {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &bookSide{maxDepth: maxDepth, ascending: ascending}
}

func (s *bookSide) less(a, b float64) bool {
	if s.ascending {
		return a < b
	}
	return a > b
}

// set applies a level update: size == 0 removes an existing level (no-op if
// absent); otherwise the level is replaced in place if present, or inserted
// in sorted order and the tail truncated to maxDepth.
func (s *bookSide) set(price, size float64, count int64) error {
	idx := sort.Search(len(s.levels), func(i int) bool {
		if s.ascending {
			return s.levels[i].Price >= price
		}
		return s.levels[i].Price <= price
	})
	found := idx < len(s.levels) && s.levels[idx].Price == price

	if size == 0 {
		if found {
			s.levels = append(s.levels[:idx], s.levels[idx+1:]...)
		}
		return nil
	}

	level, err := newBookLevel(price, size, count)
	if err != nil {
		return err
	}

	if found {
		s.levels[idx] = level
		return nil
	}

	if idx >= s.maxDepth {
		// Would sort beyond the retained depth; drop silently like an
		// eviction that never happened.
		return nil
	}

	s.levels = append(s.levels, BookLevel{})
	copy(s.levels[idx+1:], s.levels[idx:])
	s.levels[idx] = level
	if len(s.levels) > s.maxDepth {
		s.levels = s.levels[:s.maxDepth]
	}
	return nil
}

func (s *bookSide) at(i int) BookLevel { return s.levels[i] }
func (s *bookSide) len() int           { return len(s.levels) }

func (s *bookSide) clone() *bookSide {
	out := &bookSide{maxDepth: s.maxDepth, ascending: s.ascending}
	out.levels = append([]BookLevel(nil), s.levels...)
	return out
}

func (s *bookSide) equal(other *bookSide) bool {
	if len(s.levels) != len(other.levels) {
		return false
	}
	for i, lvl := range s.levels {
		if !lvl.TrueEqual(other.levels[i]) {
			return false
		}
	}
	return true
}

// Asks is the ascending-by-price side of an order book.
type Asks struct{ side *bookSide }

// Bids is the descending-by-price side of an order book.
type Bids struct{ side *bookSide }

func (a Asks) Set(price, size float64, count int64) error { return a.side.set(price, size, count) }
func (a Asks) At(i int) BookLevel                         { return a.side.at(i) }
func (a Asks) Len() int                                   { return a.side.len() }
func (a Asks) Equal(other Asks) bool                      { return a.side.equal(other.side) }

func (b Bids) Set(price, size float64, count int64) error { return b.side.set(price, size, count) }
func (b Bids) At(i int) BookLevel                         { return b.side.at(i) }
func (b Bids) Len() int                                   { return b.side.len() }
func (b Bids) Equal(other Bids) bool                      { return b.side.equal(other.side) }

// OrderBook holds the asks and bids for a single instrument.
type OrderBook struct {
	InstID string
	Asks   Asks
	Bids   Bids
}

// NewOrderBook creates an empty order book bounded to maxDepth per side. A
// maxDepth <= 0 uses DefaultMaxDepth.
func NewOrderBook(instID string, maxDepth int) *OrderBook {
	return &OrderBook{
		InstID: instID,
		Asks:   Asks{side: newBookSide(true, maxDepth)},
		Bids:   Bids{side: newBookSide(false, maxDepth)},
	}
}

// Side identifies which side of the book a row updates.
type Side string

const (
	SideAsk Side = "ask"
	SideBid Side = "bid"
)

// Apply routes a (side, price, size, count) update to the correct side.
func (b *OrderBook) Apply(side Side, price, size float64, count int64) error {
	switch side {
	case SideAsk:
		return b.Asks.Set(price, size, count)
	case SideBid:
		return b.Bids.Set(price, size, count)
	default:
		return fmt.Errorf("%w: invalid side %q", ErrMalformedRow, side)
	}
}

// Clone returns a deep copy of the book, for read-side views that must never
// observe in-place mutation.
func (b *OrderBook) Clone() *OrderBook {
	return &OrderBook{
		InstID: b.InstID,
		Asks:   Asks{side: b.Asks.side.clone()},
		Bids:   Bids{side: b.Bids.side.clone()},
	}
}

// Equal performs a full element-wise comparison of both sides.
func (b *OrderBook) Equal(other *OrderBook) bool {
	return b.Asks.Equal(other.Asks) && b.Bids.Equal(other.Bids)
}
