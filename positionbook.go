// FILE: positionbook.go
// Package main – Set of positions keyed by (instrument, direction,
// leverage), with lazy-create-or-replace-if-CLOSE get semantics.
package main

import (
	"fmt"
	"sort"
)

// positionKey identifies a Position slot.
type positionKey struct {
	instID    string
	direction Direction
	leverage  float64
}

func keyOf(inst *Instrument, dir Direction, leverage float64) positionKey {
	return positionKey{instID: inst.InstID, direction: dir, leverage: leverage}
}

// PositionBook holds at most one non-CLOSE position per key at any time.
type PositionBook struct {
	positions map[positionKey]*Position
}

// NewPositionBook constructs an empty book.
func NewPositionBook() *PositionBook {
	return &PositionBook{positions: map[positionKey]*Position{}}
}

// get returns the live position for (inst, dir, leverage), creating a fresh
// one if none exists, or replacing it if the existing one is CLOSE.
func (b *PositionBook) get(inst *Instrument, dir Direction, leverage float64) *Position {
	k := keyOf(inst, dir, leverage)
	if p, ok := b.positions[k]; ok {
		if p.Status() != PositionClose {
			return p
		}
	}
	p := NewPosition(inst, dir, leverage)
	b.positions[k] = p
	return p
}

// Open delegates to the keyed position's Open, creating it lazily.
func (b *PositionBook) Open(inst *Instrument, dir Direction, leverage, price float64, num int) error {
	return b.get(inst, dir, leverage).Open(price, num)
}

// Close delegates to the keyed position's Close, then sweeps any position
// that reached CLOSE out of the map. Returns the credited quote-currency
// amount.
func (b *PositionBook) Close(inst *Instrument, dir Direction, leverage, price float64, num int) (float64, error) {
	k := keyOf(inst, dir, leverage)
	p, ok := b.positions[k]
	if !ok {
		return 0, fmt.Errorf("no position for %s/%s/%v", inst.InstID, dir, leverage)
	}
	amount, err := p.Close(price, num)
	if err != nil {
		return 0, err
	}
	b.sweep()
	return amount, nil
}

// sweep removes every position that has reached CLOSE (two-phase: collect
// then mutate, never removing while ranging).
func (b *PositionBook) sweep() {
	var toDelete []positionKey
	for k, p := range b.positions {
		if p.Status() == PositionClose {
			toDelete = append(toDelete, k)
		}
	}
	for _, k := range toDelete {
		delete(b.positions, k)
	}
}

// Get returns the live, non-CLOSE position for the key if one exists.
func (b *PositionBook) Get(inst *Instrument, dir Direction, leverage float64) (*Position, bool) {
	p, ok := b.positions[keyOf(inst, dir, leverage)]
	if !ok || p.Status() == PositionClose {
		return nil, false
	}
	return p, true
}

// All returns every current position exactly once, in no particular order.
func (b *PositionBook) All() []*Position {
	out := make([]*Position, 0, len(b.positions))
	for _, p := range b.positions {
		out = append(out, p)
	}
	return out
}

// Snapshot returns a detached view of every current position, in a stable
// (instId, direction, leverage) order so exports and content hashes do not
// depend on map iteration.
func (b *PositionBook) Snapshot() []PositionSnapshot {
	out := make([]PositionSnapshot, 0, len(b.positions))
	for _, p := range b.positions {
		out = append(out, p.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].InstID != out[j].InstID {
			return out[i].InstID < out[j].InstID
		}
		if out[i].Direction != out[j].Direction {
			return out[i].Direction < out[j].Direction
		}
		return out[i].Leverage < out[j].Leverage
	})
	return out
}
