// FILE: strategy.go
// Package main – Strategy API surface: events, the Strategy interface, and
// the Environment view strategies read each tick.
package main

import (
	"fmt"
	"sort"
)

// Event is a pending action the World drains into an Exchange each tick.
// Execute returns nil on success, in which case the World
// removes the event from the pending list; any other return value leaves
// it pending for a later tick.
type Event interface {
	Execute(env *Environment) error
}

// CreateOrder enqueues order on the named exchange.
type CreateOrder struct {
	Ts           int64
	ExchangeName string
	Order        *Order
}

// Execute calls exchanges[ExchangeName].AddOrder(Order).
func (c *CreateOrder) Execute(env *Environment) error {
	ex, ok := env.Exchanges[c.ExchangeName]
	if !ok {
		return fmt.Errorf("no such exchange %q", c.ExchangeName)
	}
	return ex.AddOrder(c.Order)
}

// CancelOrder marks the matching OPEN order CANCELED on the named
// exchange.
type CancelOrder struct {
	Ts           int64
	ExchangeName string
	OrderUUID    string
}

// Execute finds the matching OPEN order and cancels it.
func (c *CancelOrder) Execute(env *Environment) error {
	ex, ok := env.Exchanges[c.ExchangeName]
	if !ok {
		return fmt.Errorf("no such exchange %q", c.ExchangeName)
	}
	for _, o := range ex.orders {
		if o.UUID == c.OrderUUID && o.Status == OrderOpen {
			return o.Cancel()
		}
	}
	return fmt.Errorf("no OPEN order %s on exchange %q", c.OrderUUID, c.ExchangeName)
}

// Strategy is user-supplied backtest logic: given the current Environment,
// it returns zero or more Events to enqueue.
type Strategy interface {
	Eval(env *Environment) []Event
}

// Environment is the read surface a Strategy sees each tick: the
// integer-coercible simulation clock and every named exchange.
type Environment struct {
	Clock     *Clock
	Exchanges map[string]*Exchange
}

// NewEnvironment builds an Environment over the given clock and exchange
// set.
func NewEnvironment(clock *Clock, exchanges map[string]*Exchange) *Environment {
	return &Environment{Clock: clock, Exchanges: exchanges}
}

// SimTime returns the current simulation clock value.
func (e *Environment) SimTime() int64 { return e.Clock.Now() }

// Eval delegates to every exchange's Eval(), in exchange-name order so a
// run is deterministic. Within one exchange, Exchange.Eval's phase ordering
// is always liquidation -> delivery -> orders.
func (e *Environment) Eval() error {
	names := make([]string, 0, len(e.Exchanges))
	for name := range e.Exchanges {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := e.Exchanges[name].Eval(); err != nil {
			return err
		}
	}
	return nil
}
