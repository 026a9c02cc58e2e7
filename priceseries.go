// FILE: priceseries.go
// Package main – Latest-known scalar price stream (mark price / index
// price), read lazily at the simulation clock with a max-staleness guard.
// Exposed as an explicit Value() accessor plus a small set of named
// arithmetic helpers. Multiplication is symmetric: both operand orders
// multiply.
package main

import (
	"fmt"
	"path/filepath"
	"sort"
)

// PricePoint is a single per-instrument scalar stream (mark price or index
// price) read lazily at the simulation clock.
type PricePoint struct {
	instID      string
	maxInterval int64
	index       *chunkIndex

	rows      []PriceRow
	currentTs int64
	value     float64
}

// NewPricePoint builds a PricePoint for instID rooted at dir (either
// <root>/markprices/<instId> or <root>/indexprices/<instId>).
func NewPricePoint(dir, instID string, maxInterval int64) (*PricePoint, error) {
	idx, err := newChunkIndex(dir)
	if err != nil {
		return nil, err
	}
	return &PricePoint{instID: instID, maxInterval: maxInterval, index: idx, currentTs: -1}, nil
}

// Update refreshes the cached value to reflect the latest row with
// timestamp <= clock.
func (p *PricePoint) Update(clock int64) error {
	if p.currentTs == clock {
		return nil
	}

	moved, err := p.index.locate(clock)
	if err != nil {
		return err
	}
	if moved {
		rows, err := readPriceChunk(p.index.path())
		if err != nil {
			return err
		}
		p.rows = rows
	}

	if clock < p.currentTs {
		return ErrClockRegressed
	}

	// Largest row with timestamp <= clock.
	i := sort.Search(len(p.rows), func(i int) bool { return p.rows[i].Timestamp > clock }) - 1
	if i < 0 {
		return fmt.Errorf("%w: instrument %s at %d", ErrNoPriorDataPoint, p.instID, clock)
	}
	row := p.rows[i]
	if clock-row.Timestamp > p.maxInterval {
		return fmt.Errorf("%w: gap %dms at %d exceeds %dms", ErrDataGapExceeded, clock-row.Timestamp, clock, p.maxInterval)
	}
	if row.Value == nil {
		return fmt.Errorf("%w: %s at ts %d", ErrNullValue, p.instID, row.Timestamp)
	}

	p.value = *row.Value
	p.currentTs = clock
	return nil
}

// Value returns the latest-known scalar, lazily refreshing at clock first.
func (p *PricePoint) Value(clock int64) (float64, error) {
	if err := p.Update(clock); err != nil {
		return 0, err
	}
	return p.value, nil
}

// Add returns Value(clock) + other.
func (p *PricePoint) Add(clock int64, other float64) (float64, error) {
	v, err := p.Value(clock)
	return v + other, err
}

// Sub returns Value(clock) - other.
func (p *PricePoint) Sub(clock int64, other float64) (float64, error) {
	v, err := p.Value(clock)
	return v - other, err
}

// Mul returns Value(clock) * other. The same helper serves the
// "other * Value(clock)" direction since multiplication is commutative.
func (p *PricePoint) Mul(clock int64, other float64) (float64, error) {
	v, err := p.Value(clock)
	return v * other, err
}

// Div returns Value(clock) / other.
func (p *PricePoint) Div(clock int64, other float64) (float64, error) {
	v, err := p.Value(clock)
	if other == 0 {
		return 0, fmt.Errorf("division by zero")
	}
	return v / other, err
}

// priceSeriesBundle lazily constructs one PricePoint per instrument under a
// root directory (markprices or indexprices).
type priceSeriesBundle struct {
	root        string
	maxInterval int64
	points      map[string]*PricePoint
}

func newPriceSeriesBundle(root string, maxInterval int64) *priceSeriesBundle {
	return &priceSeriesBundle{root: root, maxInterval: maxInterval, points: map[string]*PricePoint{}}
}

func (b *priceSeriesBundle) get(inst *Instrument) (*PricePoint, error) {
	if pp, ok := b.points[inst.InstID]; ok {
		return pp, nil
	}
	pp, err := NewPricePoint(filepath.Join(b.root, inst.InstID), inst.InstID, b.maxInterval)
	if err != nil {
		return nil, err
	}
	b.points[inst.InstID] = pp
	return pp, nil
}
