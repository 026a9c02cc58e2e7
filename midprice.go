// FILE: midprice.go
// Package main – Derived best-bid/ask midpoint stream over a rolling window.
//
// MidPriceTracker replays the same snapshot+update chunk stream as
// BookReplay, but instead of exposing the book it samples
// (bestAsk+bestBid)/2 each time a new row timestamp is reached (and once
// more at the final clock), and reports the rolling mean over `window`
// samples. It exists as a fallback mark price when mark-price data are
// missing.
package main

import "fmt"

// MidPriceTracker maintains a bounded FIFO of midpoint samples for one
// instrument.
type MidPriceTracker struct {
	window      int
	maxInterval int64
	index       *chunkIndex
	book        *OrderBook

	rows      []BookRow
	rowIdx    int
	currentTs int64
	samples   []float64
}

// NewMidPriceTracker builds a tracker for instID rooted at dir
// (<root>/books/<instId>), sampling over the given window (default 1 when
// window <= 0).
func NewMidPriceTracker(dir, instID string, window int, maxInterval int64) (*MidPriceTracker, error) {
	if window <= 0 {
		window = 1
	}
	idx, err := newChunkIndex(dir)
	if err != nil {
		return nil, err
	}
	return &MidPriceTracker{
		window:      window,
		maxInterval: maxInterval,
		index:       idx,
		book:        NewOrderBook(instID, DefaultMaxDepth),
		currentTs:   -1,
	}, nil
}

func (m *MidPriceTracker) sample() {
	if m.book.Asks.Len() == 0 || m.book.Bids.Len() == 0 {
		return
	}
	mid := (m.book.Asks.At(0).Price + m.book.Bids.At(0).Price) / 2
	m.samples = append(m.samples, mid)
	if len(m.samples) > m.window {
		m.samples = m.samples[len(m.samples)-m.window:]
	}
}

// Update advances the tracker to clock, same shape as BookReplay.Update,
// but samples the midpoint at each new timestamp and once more at the end.
func (m *MidPriceTracker) Update(clock int64) error {
	if m.currentTs == clock {
		return nil
	}

	moved, err := m.index.locate(clock)
	if err != nil {
		return err
	}
	if moved {
		rows, err := readBookChunk(m.index.path())
		if err != nil {
			return err
		}
		if len(rows) == 0 || rows[0].Action != "snapshot" {
			return fmt.Errorf("%w: chunk %s", ErrMissingSnapshotHead, m.index.path())
		}
		initialTs := rows[0].Timestamp
		m.rows = rows
		m.book = NewOrderBook(m.book.InstID, DefaultMaxDepth)

		i := 0
		for i < len(rows) && rows[i].Action == "snapshot" && rows[i].Timestamp == initialTs {
			if err := m.applyRow(rows[i]); err != nil {
				return err
			}
			i++
		}
		m.rowIdx = i
		m.currentTs = initialTs
		m.sample()
	}

	if clock < m.currentTs {
		return ErrClockRegressed
	}

	for m.rowIdx < len(m.rows) && m.rows[m.rowIdx].Timestamp <= clock {
		row := m.rows[m.rowIdx]
		if m.currentTs != -1 {
			gap := row.Timestamp - m.currentTs
			if gap < 0 {
				gap = -gap
			}
			if gap > m.maxInterval {
				return fmt.Errorf("%w: gap %dms at %d exceeds %dms", ErrDataGapExceeded, gap, row.Timestamp, m.maxInterval)
			}
		}
		if err := m.applyRow(row); err != nil {
			return err
		}
		if row.Timestamp != m.currentTs {
			m.currentTs = row.Timestamp
			m.sample()
		}
		m.rowIdx++
	}
	m.sample()
	m.currentTs = clock
	return nil
}

func (m *MidPriceTracker) applyRow(row BookRow) error {
	var side Side
	switch row.Side {
	case "ask":
		side = SideAsk
	case "bid":
		side = SideBid
	default:
		return fmt.Errorf("%w: unknown side %q", ErrMalformedRow, row.Side)
	}
	return m.book.Apply(side, row.Price, row.Size, row.NumOrders)
}

// Now returns the arithmetic mean of the current sample window, lazily
// refreshing at clock first.
func (m *MidPriceTracker) Now(clock int64) (float64, error) {
	if err := m.Update(clock); err != nil {
		return 0, err
	}
	if len(m.samples) == 0 {
		return 0, fmt.Errorf("%w: no midpoint samples yet", ErrNoPriorDataPoint)
	}
	var sum float64
	for _, s := range m.samples {
		sum += s
	}
	return sum / float64(len(m.samples)), nil
}
