// FILE: bookreplay.go
// Package main – Reconstructs a live OrderBook from a chunked snapshot+update
// stream synchronised to the simulation clock.
//
// BookReplay.Update is the heart of order-book reconstruction: after it
// returns, the OrderBook reflects every row with timestamp <= clock, and
// replay.currentTs == clock.
package main

import (
	"fmt"
)

// BookReplay drives one instrument's OrderBook forward in lock-step with the
// simulation clock.
type BookReplay struct {
	instID      string
	maxInterval int64
	index       *chunkIndex
	book        *OrderBook

	rows         []BookRow
	rowIdx       int
	currentTs    int64 // -1 until the first chunk is loaded
}

// NewBookReplay builds a BookReplay for instID rooted at dir
// (<root>/books/<instId>), and performs the initial load up to clock.Now().
func NewBookReplay(dir, instID string, maxDepth int, maxInterval int64) (*BookReplay, error) {
	idx, err := newChunkIndex(dir)
	if err != nil {
		return nil, err
	}
	return &BookReplay{
		instID:      instID,
		maxInterval: maxInterval,
		index:       idx,
		book:        NewOrderBook(instID, maxDepth),
		currentTs:   -1,
	}, nil
}

// Book returns the live OrderBook. Callers that need a stable read-only view
// should use Snapshot instead.
func (r *BookReplay) Book() *OrderBook { return r.book }

// Snapshot returns a deep copy of the current book state.
func (r *BookReplay) Snapshot() *OrderBook { return r.book.Clone() }

// Update advances the book to reflect every row with timestamp <= clock.
func (r *BookReplay) Update(clock int64) error {
	if r.currentTs == clock {
		return nil
	}

	moved, err := r.index.locate(clock)
	if err != nil {
		return err
	}
	if moved {
		rows, err := readBookChunk(r.index.path())
		if err != nil {
			return err
		}
		if len(rows) == 0 || rows[0].Action != "snapshot" {
			return fmt.Errorf("%w: chunk %s", ErrMissingSnapshotHead, r.index.path())
		}
		initialTs := rows[0].Timestamp
		r.rows = rows
		r.book = NewOrderBook(r.instID, r.book.Asks.side.maxDepth)

		i := 0
		for i < len(rows) && rows[i].Action == "snapshot" && rows[i].Timestamp == initialTs {
			if err := r.applyRow(rows[i]); err != nil {
				return err
			}
			i++
		}
		r.rowIdx = i
		r.currentTs = initialTs
	}

	if clock < r.currentTs {
		return ErrClockRegressed
	}

	for r.rowIdx < len(r.rows) && r.rows[r.rowIdx].Timestamp <= clock {
		row := r.rows[r.rowIdx]
		if r.currentTs != -1 {
			gap := row.Timestamp - r.currentTs
			if gap < 0 {
				gap = -gap
			}
			if gap > r.maxInterval {
				return fmt.Errorf("%w: gap %dms between %d and %d exceeds %dms",
					ErrDataGapExceeded, gap, r.currentTs, row.Timestamp, r.maxInterval)
			}
		}
		if err := r.applyRow(row); err != nil {
			return err
		}
		r.currentTs = row.Timestamp
		r.rowIdx++
	}

	r.currentTs = clock
	return nil
}

func (r *BookReplay) applyRow(row BookRow) error {
	var side Side
	switch row.Side {
	case "ask":
		side = SideAsk
	case "bid":
		side = SideBid
	default:
		return fmt.Errorf("%w: unknown side %q", ErrMalformedRow, row.Side)
	}
	return r.book.Apply(side, row.Price, row.Size, row.NumOrders)
}
