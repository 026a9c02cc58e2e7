// FILE: instrument.go
// Package main – Immutable instrument descriptors.
//
// Instrument is a pair of currencies, an instrument kind, optional
// listing/expiry times, and (for FUTURES) a contract multiplier and tick
// size. Two instruments are considered the same instrument iff their
// InstID matches.
package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// InstType enumerates the instrument kinds the kernel understands.
type InstType string

const (
	InstSpot    InstType = "SPOT"
	InstFutures InstType = "FUTURES"
	InstSwap    InstType = "SWAP"
)

// Pair is a base/quote currency pair.
type Pair struct {
	BaseCcy  string
	QuoteCcy string
}

func (p Pair) String() string { return fmt.Sprintf("%s-%s", p.BaseCcy, p.QuoteCcy) }

// Instrument is an immutable descriptor for a tradable symbol.
type Instrument struct {
	Pair          Pair
	InstID        string
	Type          InstType
	ListTime      int64 // 0 means unset
	ExpTime       int64 // 0 means unset
	contractSize  float64
	tickSize      float64
	hasContractSz bool
	hasTickSz     bool
}

// NewInstrument validates and builds an Instrument. contractSize is required
// (and must be > 0) for FUTURES; tickSize, when given, must be > 0.
func NewInstrument(pair Pair, instID string, typ InstType, listTime, expTime int64, contractSize, tickSize float64) (*Instrument, error) {
	if listTime < 0 || expTime < 0 {
		return nil, fmt.Errorf("instrument %s: list/exp time must be >= 0", instID)
	}
	if typ == InstFutures && contractSize <= 0 {
		return nil, fmt.Errorf("instrument %s: contract_size required for FUTURES", instID)
	}
	if contractSize < 0 {
		return nil, fmt.Errorf("instrument %s: invalid contract size %v", instID, contractSize)
	}
	if tickSize < 0 {
		return nil, fmt.Errorf("instrument %s: invalid tick size %v", instID, tickSize)
	}
	return &Instrument{
		Pair:          pair,
		InstID:        instID,
		Type:          typ,
		ListTime:      listTime,
		ExpTime:       expTime,
		contractSize:  contractSize,
		tickSize:      tickSize,
		hasContractSz: contractSize > 0,
		hasTickSz:     tickSize > 0,
	}, nil
}

// BaseCcy returns the base currency.
func (i *Instrument) BaseCcy() string { return i.Pair.BaseCcy }

// QuoteCcy returns the quote currency.
func (i *Instrument) QuoteCcy() string { return i.Pair.QuoteCcy }

// ContractSize returns the futures contract multiplier; it is only valid for
// FUTURES instruments.
func (i *Instrument) ContractSize() (float64, error) {
	if !i.hasContractSz {
		return 0, fmt.Errorf("contract size is not available for %s", i.InstID)
	}
	if i.Type != InstFutures {
		return 0, fmt.Errorf("contract size is not available for %s", i.Type)
	}
	return i.contractSize, nil
}

// TickSize returns the minimum price increment, if configured.
func (i *Instrument) TickSize() (float64, error) {
	if !i.hasTickSz {
		return 0, fmt.Errorf("tick size is not available for %s", i.InstID)
	}
	return i.tickSize, nil
}

// Equal compares instruments by InstID only.
func (i *Instrument) Equal(other *Instrument) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.InstID == other.InstID
}

func (i *Instrument) String() string { return i.InstID }

// DeliveryTime derives the instrument's expiry timestamp in milliseconds.
// When ExpTime is explicitly set it wins; otherwise, for FUTURES instruments
// whose InstID encodes the expiry as a third dash-separated segment
// ("BTC-USDT-240628"), the date is parsed from that segment.
func (i *Instrument) DeliveryTime() (int64, error) {
	if i.ExpTime > 0 {
		return i.ExpTime, nil
	}
	if i.Type != InstFutures {
		return 0, fmt.Errorf("instrument %s has no delivery time", i.InstID)
	}
	parts := strings.Split(i.InstID, "-")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid instId for futures delivery decoding: %s", i.InstID)
	}
	date, err := time.Parse("060102", parts[2])
	if err != nil {
		return 0, fmt.Errorf("invalid expiry segment in instId %s: %w", i.InstID, err)
	}
	return date.UnixMilli(), nil
}

// parseChunkRange extracts the [startTs, endTs] pair encoded in a chunk
// filename of the form part-<seq>-<startTs>-<endTs>.<ext>.
func parseChunkRange(filename string) (start, end int64, err error) {
	base := filename
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndex(base, "."); idx >= 0 {
		base = base[:idx]
	}
	parts := strings.Split(base, "-")
	if len(parts) != 4 || parts[0] != "part" {
		return 0, 0, fmt.Errorf("%w: bad chunk filename %q", ErrMalformedRow, filename)
	}
	start, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad chunk start in %q", ErrMalformedRow, filename)
	}
	end, err = strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad chunk end in %q", ErrMalformedRow, filename)
	}
	return start, end, nil
}
