// FILE: order.go
// Package main – Stateful order entity: immutable intent fields, a fill
// history, and a small status machine.
package main

import (
	"fmt"

	"github.com/google/uuid"
)

// OrderType distinguishes market from limit orders. Only market orders are
// matched by the exchange; limit-order matching is an unimplemented
// extension seam.
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// Direction is the position-facing side of an order or position: BUYLONG
// opens/holds a long, SELLSHORT opens/holds a short.
type Direction string

const (
	BuyLong   Direction = "BUYLONG"
	SellShort Direction = "SELLSHORT"
)

// Action distinguishes opening a new futures position from closing an
// existing one. Spot orders always use ActionOpen.
type Action string

const (
	ActionOpen  Action = "OPEN"
	ActionClose Action = "CLOSE"
)

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	OrderOpen         OrderStatus = "OPEN"
	OrderClosed       OrderStatus = "CLOSED"
	OrderCanceled     OrderStatus = "CANCELED"
	OrderInsufficient OrderStatus = "INSUFFICIENT"
)

// Fill is one partial (or full) execution against an order.
type Fill struct {
	Ts     int64
	Price  float64
	Amount float64
	Fee    float64
}

// Order is a stateful order entity: immutable intent fields plus a mutable
// fill history and status machine.
type Order struct {
	UUID       string
	Instrument *Instrument
	OrderType  OrderType
	Side       Direction
	Action     Action
	Leverage   float64
	Amount     float64
	CreateTs   int64

	Status OrderStatus
	Fills  []Fill
}

// NewOrder constructs an OPEN order. leverage must be >= 1 and amount > 0.
func NewOrder(inst *Instrument, orderType OrderType, side Direction, action Action, leverage, amount float64, createTs int64) (*Order, error) {
	if leverage < 1 {
		return nil, fmt.Errorf("order leverage must be >= 1, got %v", leverage)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("order amount must be > 0, got %v", amount)
	}
	return &Order{
		UUID:       uuid.NewString(),
		Instrument: inst,
		OrderType:  orderType,
		Side:       side,
		Action:     action,
		Leverage:   leverage,
		Amount:     amount,
		CreateTs:   createTs,
		Status:     OrderOpen,
	}, nil
}

// LeftAmount is amount minus the sum of all recorded fills.
func (o *Order) LeftAmount() float64 {
	left := o.Amount
	for _, f := range o.Fills {
		left -= f.Amount
	}
	return left
}

// Exe records a fill of size amount at price, with the given fee, tagged
// with ts. Requires the order to be OPEN and amount <= LeftAmount(). The
// order transitions to CLOSED once LeftAmount() reaches zero.
func (o *Order) Exe(ts int64, price, amount, fee float64) error {
	if o.Status != OrderOpen {
		return fmt.Errorf("%w: order %s has status %s", ErrOrderTerminal, o.UUID, o.Status)
	}
	if amount > o.LeftAmount() {
		return fmt.Errorf("fill amount %v exceeds left amount %v on order %s", amount, o.LeftAmount(), o.UUID)
	}
	o.Fills = append(o.Fills, Fill{Ts: ts, Price: price, Amount: amount, Fee: fee})
	if o.LeftAmount() == 0 {
		o.Status = OrderClosed
	}
	return nil
}

// Insufficient transitions an OPEN order to the terminal INSUFFICIENT
// status (balance or liquidity exhaustion mid-match).
func (o *Order) Insufficient() error {
	if o.Status != OrderOpen {
		return fmt.Errorf("%w: order %s has status %s", ErrOrderTerminal, o.UUID, o.Status)
	}
	o.Status = OrderInsufficient
	return nil
}

// Cancel transitions an OPEN order to CANCELED (external request).
func (o *Order) Cancel() error {
	if o.Status != OrderOpen {
		return fmt.Errorf("%w: order %s has status %s", ErrOrderTerminal, o.UUID, o.Status)
	}
	o.Status = OrderCanceled
	return nil
}

// ATP is the size-weighted average fill price. Only meaningful once the
// order is CLOSED.
func (o *Order) ATP() (float64, error) {
	if o.Status != OrderClosed {
		return 0, fmt.Errorf("ATP is only defined for CLOSED orders, order %s has status %s", o.UUID, o.Status)
	}
	var notional, qty float64
	for _, f := range o.Fills {
		notional += f.Price * f.Amount
		qty += f.Amount
	}
	if qty == 0 {
		return 0, fmt.Errorf("CLOSED order %s has no fills", o.UUID)
	}
	return notional / qty, nil
}

// TotalFee sums the fee across all recorded fills. Only meaningful once the
// order is CLOSED.
func (o *Order) TotalFee() (float64, error) {
	if o.Status != OrderClosed {
		return 0, fmt.Errorf("fee is only defined for CLOSED orders, order %s has status %s", o.UUID, o.Status)
	}
	var total float64
	for _, f := range o.Fills {
		total += f.Fee
	}
	return total, nil
}

// OrderSnapshot is the JSON-friendly, immutable view of an order emitted by
// History.
type OrderSnapshot struct {
	UUID       string      `json:"uuid"`
	InstID     string      `json:"instId"`
	OrderType  OrderType   `json:"orderType"`
	Side       Direction   `json:"side"`
	Action     Action      `json:"action"`
	Leverage   float64     `json:"leverage"`
	Amount     float64     `json:"amount"`
	CreateTs   int64       `json:"createTs"`
	Status     OrderStatus `json:"status"`
	Fills      []Fill      `json:"fills"`
	LeftAmount float64     `json:"leftAmount"`
}

// Snapshot returns a JSON-friendly, fully-detached view of the order.
func (o *Order) Snapshot() OrderSnapshot {
	return OrderSnapshot{
		UUID:       o.UUID,
		InstID:     o.Instrument.InstID,
		OrderType:  o.OrderType,
		Side:       o.Side,
		Action:     o.Action,
		Leverage:   o.Leverage,
		Amount:     o.Amount,
		CreateTs:   o.CreateTs,
		Status:     o.Status,
		Fills:      append([]Fill(nil), o.Fills...),
		LeftAmount: o.LeftAmount(),
	}
}
