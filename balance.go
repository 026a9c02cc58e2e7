// FILE: balance.go
// Package main – Per-currency non-negative balance ledger.
//
// Balances are tracked with github.com/shopspring/decimal rather than
// float64: credits and debits accumulate over a long backtest and the
// ledger must never drift or go negative by a rounding error. Every other
// numeric quantity in this kernel (price, margin, P&L) stays float64;
// decimal is scoped to the ledger alone.
package main

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Balance is a per-currency ledger that never allows a negative balance.
type Balance struct {
	funds map[string]decimal.Decimal
}

// NewBalance builds a Balance from an initial per-currency map.
func NewBalance(initial map[string]float64) (*Balance, error) {
	b := &Balance{funds: map[string]decimal.Decimal{}}
	for ccy, amount := range initial {
		if err := b.Set(ccy, amount); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Get returns the current balance for ccy (zero if never set).
func (b *Balance) Get(ccy string) float64 {
	v, ok := b.funds[ccy]
	if !ok {
		return 0
	}
	f, _ := v.Float64()
	return f
}

// Set assigns ccy's balance outright. Fails if amount is negative.
func (b *Balance) Set(ccy string, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("%w: cannot set %s to negative balance %v", ErrInsufficientBalance, ccy, amount)
	}
	b.funds[ccy] = decimal.NewFromFloat(amount)
	return nil
}

// Credit adds amount (must be >= 0) to ccy's balance.
func (b *Balance) Credit(ccy string, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("credit amount must be >= 0, got %v", amount)
	}
	cur := b.funds[ccy]
	b.funds[ccy] = cur.Add(decimal.NewFromFloat(amount))
	return nil
}

// Debit subtracts amount (must be >= 0) from ccy's balance. Fails with
// ErrInsufficientBalance if the result would go negative, leaving the
// balance unchanged.
func (b *Balance) Debit(ccy string, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("debit amount must be >= 0, got %v", amount)
	}
	cur := b.funds[ccy]
	next := cur.Sub(decimal.NewFromFloat(amount))
	if next.IsNegative() {
		return fmt.Errorf("%w: cannot debit %v %s from balance %v", ErrInsufficientBalance, amount, ccy, b.Get(ccy))
	}
	b.funds[ccy] = next
	return nil
}

// Snapshot returns a detached currency->amount map for history export.
func (b *Balance) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(b.funds))
	for ccy, v := range b.funds {
		f, _ := v.Float64()
		out[ccy] = f
	}
	return out
}
