// FILE: history.go
// Package main – Deduplicated, hash-gated snapshot log with serialisable
// export. One entry per tick where the exchanges' state actually changed.
package main

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// HistLevel controls how much detail a snapshot records.
type HistLevel string

const (
	HistDebug HistLevel = "DEBUG"
	HistInfo  HistLevel = "INFO"
)

// ExchangeSnapshot is one exchange's state at a single simTime.
type ExchangeSnapshot struct {
	SimTime   int64              `json:"simTime"`
	Orders    []OrderSnapshot    `json:"orders"`
	Balance   map[string]float64 `json:"balance"`
	Positions []PositionSnapshot `json:"positions"`
}

// HistoryEntry is one recorded tick.
type HistoryEntry struct {
	SimTime   int64                       `json:"simTime"`
	Exchanges map[string]ExchangeSnapshot `json:"exchanges"`
}

// History accumulates HistoryEntry records, skipping any entry whose
// content hash matches the immediately preceding one. The hash covers the
// exchanges' state only, never the simTime fields — a tick where nothing
// but the clock moved is not a new snapshot.
type History struct {
	Level   HistLevel
	entries []HistoryEntry
	lastSum [32]byte
	hasLast bool
}

// NewHistory creates an empty History at the given detail level.
func NewHistory(level HistLevel) *History {
	return &History{Level: level}
}

// Snapshot records env's current state if it differs from the last
// recorded entry.
func (h *History) Snapshot(env *Environment) error {
	entry := HistoryEntry{
		SimTime:   env.SimTime(),
		Exchanges: map[string]ExchangeSnapshot{},
	}
	for name, ex := range env.Exchanges {
		orders := ex.Orders()
		orderSnaps := make([]OrderSnapshot, len(orders))
		for i, o := range orders {
			orderSnaps[i] = o.Snapshot()
		}
		entry.Exchanges[name] = ExchangeSnapshot{
			SimTime:   env.SimTime(),
			Orders:    orderSnaps,
			Balance:   ex.Balance().Snapshot(),
			Positions: ex.Positions().Snapshot(),
		}
	}

	sum, err := contentHash(entry)
	if err != nil {
		return err
	}
	if h.hasLast && sum == h.lastSum {
		return nil
	}
	h.entries = append(h.entries, entry)
	h.lastSum = sum
	h.hasLast = true
	return nil
}

// contentHash digests the entry's exchange state with the simTime fields
// zeroed, so the gate compares state, not time.
func contentHash(entry HistoryEntry) ([32]byte, error) {
	hashed := HistoryEntry{Exchanges: make(map[string]ExchangeSnapshot, len(entry.Exchanges))}
	for name, ex := range entry.Exchanges {
		ex.SimTime = 0
		hashed.Exchanges[name] = ex
	}
	encoded, err := json.Marshal(hashed)
	if err != nil {
		return [32]byte{}, fmt.Errorf("encode history entry: %w", err)
	}
	return sha256.Sum256(encoded), nil
}

// historyExport is the top-level JSON shape of a saved history file.
type historyExport struct {
	HistLevel HistLevel      `json:"hist_level"`
	History   []HistoryEntry `json:"history"`
}

// Export serialises the full history log to JSON.
func (h *History) Export() ([]byte, error) {
	return json.Marshal(historyExport{HistLevel: h.Level, History: h.entries})
}

// Entries returns the recorded entries directly, for in-process
// inspection (e.g. tests) without a JSON round-trip.
func (h *History) Entries() []HistoryEntry {
	return h.entries
}
