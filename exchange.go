// FILE: exchange.go
// Package main – The matching and accounting kernel: per-venue owner of the
// reader, balances, orders, positions, and fee schedule. Eval() runs a
// fixed per-tick pass: liquidation sweep, delivery sweep, then market-order
// matching against the replayed book.
package main

import (
	"fmt"
)

// FeeSchedule holds the taker/maker rates applied to orders; market orders
// always pay taker.
type FeeSchedule struct {
	SpotTaker float64
	SpotMaker float64
	FutTaker  float64
	FutMaker  float64
}

// DefaultFeeSchedule is the standard venue fee table.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{SpotTaker: 0.0010, SpotMaker: 0.0008, FutTaker: 0.0005, FutMaker: 0.0002}
}

const (
	defaultMMR             = 0.004
	defaultDeliveryFeeRate = 0.0001
)

var usdQuoteCcys = map[string]bool{"USDT": true, "USDC": true}

// Exchange owns a clock reference, a MarketData reader bundle, the pending
// orders list, a Balance, a PositionBook, and a fixed fee schedule.
type Exchange struct {
	Name string

	clock      *Clock
	marketData *MarketData
	balance    *Balance
	positions  *PositionBook
	orders     []*Order

	fees            FeeSchedule
	mmr             float64
	deliveryFeeRate float64
}

// ExchangeConfig bundles the construction-time parameters for an Exchange.
type ExchangeConfig struct {
	Name             string
	DataRoot         string
	Clock            *Clock
	InitialBalance   map[string]float64
	MaxDepth         int
	BookMaxInterval  int64
	PriceMaxInterval int64
	MidWindow        int
	Fees             FeeSchedule
	MMR              float64
	DeliveryFeeRate  float64
}

// NewExchange builds an Exchange per cfg, defaulting the fee schedule, mmr,
// and delivery fee rate when left zero.
func NewExchange(cfg ExchangeConfig) (*Exchange, error) {
	bal, err := NewBalance(cfg.InitialBalance)
	if err != nil {
		return nil, err
	}
	fees := cfg.Fees
	if fees == (FeeSchedule{}) {
		fees = DefaultFeeSchedule()
	}
	mmr := cfg.MMR
	if mmr == 0 {
		mmr = defaultMMR
	}
	deliveryFeeRate := cfg.DeliveryFeeRate
	if deliveryFeeRate == 0 {
		deliveryFeeRate = defaultDeliveryFeeRate
	}
	return &Exchange{
		Name:            cfg.Name,
		clock:           cfg.Clock,
		marketData:      NewMarketData(cfg.DataRoot, cfg.MaxDepth, cfg.BookMaxInterval, cfg.PriceMaxInterval, cfg.MidWindow),
		balance:         bal,
		positions:       NewPositionBook(),
		fees:            fees,
		mmr:             mmr,
		deliveryFeeRate: deliveryFeeRate,
	}, nil
}

// Balance returns the live balance ledger.
func (e *Exchange) Balance() *Balance { return e.balance }

// Positions returns the live position book.
func (e *Exchange) Positions() *PositionBook { return e.positions }

// MarketData returns the live market-data reader bundle.
func (e *Exchange) MarketData() *MarketData { return e.marketData }

// Orders returns a detached copy of the order pointer list (the orders
// themselves remain live for status-based filtering by callers; history
// snapshots call Order.Snapshot for a fully-detached view).
func (e *Exchange) Orders() []*Order {
	out := make([]*Order, len(e.orders))
	copy(out, e.orders)
	return out
}

// AddOrder enqueues an order for matching on the next Eval().
func (e *Exchange) AddOrder(o *Order) error {
	e.orders = append(e.orders, o)
	return nil
}

// feeRate returns the taker fee rate for inst.
func (e *Exchange) feeRate(inst *Instrument) float64 {
	if inst.Type == InstSpot {
		return e.fees.SpotTaker
	}
	return e.fees.FutTaker
}

// Eval runs the fixed-order per-tick accounting pass: liquidation sweep,
// delivery sweep, then order matching in insertion order. The ordering is
// load-bearing and must not change.
func (e *Exchange) Eval() error {
	if err := e.liquidationSweep(); err != nil {
		return err
	}
	if err := e.deliverySweep(); err != nil {
		return err
	}
	return e.matchOrders()
}

// liquidationSweep force-closes any OPEN position whose MarginRate has
// fallen to or below 1.0, using a synthetic market close order.
func (e *Exchange) liquidationSweep() error {
	clock := e.clock.Now()
	var toLiquidate []*Position
	for _, p := range e.positions.All() {
		if p.OpenNum() == 0 {
			continue
		}
		mark, err := e.marketData.MarkPrice(p.Instrument, clock)
		if err != nil {
			return err
		}
		rate, err := p.MarginRate(mark, e.mmr, e.feeRate(p.Instrument))
		if err != nil {
			return err
		}
		if rate <= 1.0 {
			toLiquidate = append(toLiquidate, p)
		}
	}
	for _, p := range toLiquidate {
		order, err := NewOrder(p.Instrument, OrderTypeMarket, p.Direction, ActionClose, p.Leverage, float64(p.OpenNum()), clock)
		if err != nil {
			return err
		}
		if err := e.executeFuturesOrder(order); err != nil {
			return err
		}
		e.orders = append(e.orders, order)
		recordLiquidation(e.Name)
	}
	return nil
}

// deliverySweep force-closes any position whose instrument has reached
// expiry, crediting the quote currency and debiting the delivery fee, and
// purges any still-OPEN orders for the delivered instrument.
func (e *Exchange) deliverySweep() error {
	clock := e.clock.Now()
	var toDeliver []*Position
	for _, p := range e.positions.All() {
		if p.OpenNum() == 0 {
			continue
		}
		endTs, err := p.Instrument.DeliveryTime()
		if err != nil {
			continue // instrument has no expiry; nothing to deliver
		}
		if endTs <= clock {
			toDeliver = append(toDeliver, p)
		}
	}
	for _, p := range toDeliver {
		closePrice, err := e.marketData.IndexPrice(p.Instrument, clock)
		if err != nil {
			// Delivery settles at the index price, or the trade price
			// when the index is unavailable.
			var tradeErr error
			closePrice, tradeErr = e.marketData.TradePrice(p.Instrument, clock)
			if tradeErr != nil {
				return fmt.Errorf("index price unavailable (%w) and trade price fallback failed: %w", err, tradeErr)
			}
		}
		contractSize, err := p.Instrument.ContractSize()
		if err != nil {
			return err
		}
		openNum := p.OpenNum()
		fee := closePrice * float64(openNum) * contractSize * e.deliveryFeeRate

		amount, err := e.positions.Close(p.Instrument, p.Direction, p.Leverage, closePrice, openNum)
		if err != nil {
			return err
		}
		if err := e.balance.Credit(p.Instrument.QuoteCcy(), amount); err != nil {
			return err
		}
		if err := e.balance.Debit(p.Instrument.QuoteCcy(), fee); err != nil {
			return err
		}

		var kept []*Order
		for _, o := range e.orders {
			if o.Status == OrderOpen && o.Instrument.Equal(p.Instrument) {
				continue
			}
			kept = append(kept, o)
		}
		e.orders = kept
		recordDelivery(e.Name)
	}
	return nil
}

// matchOrders dispatches every OPEN order, in insertion order, by
// instrument kind.
func (e *Exchange) matchOrders() error {
	for _, o := range e.orders {
		if o.Status != OrderOpen {
			continue
		}
		if o.OrderType != OrderTypeMarket {
			if err := e.executeLimitOrder(o); err != nil {
				return err
			}
			continue
		}
		var err error
		switch o.Instrument.Type {
		case InstSpot:
			err = e.executeSpotOrder(o)
		case InstFutures:
			err = e.executeFuturesOrder(o)
		default:
			// SWAP and anything else the kernel does not match is fatal,
			// not an order outcome.
			return fmt.Errorf("%w: %s on %s", ErrUnsupportedInstType, o.Instrument.Type, o.Instrument.InstID)
		}
		if err != nil {
			return err
		}
		if o.Status != OrderOpen {
			recordOrderTerminal(e.Name, o.Status)
		}
	}
	return nil
}

// executeLimitOrder is the unimplemented extension seam for resting limit
// orders: on each eval a resting limit would be compared against both
// sides of the book and partially filled at the resting price. The entry
// point exists so a future implementation has somewhere to live without
// reshaping matchOrders.
func (e *Exchange) executeLimitOrder(o *Order) error {
	return fmt.Errorf("%w: limit order matching for %s", ErrNotImplemented, o.Instrument.InstID)
}

// bookSideToWalk returns the opposite-side book levels a market order walks
// against: bids for a buy, asks for a sell.
func (e *Exchange) executeSpotOrder(o *Order) error {
	clock := e.clock.Now()
	book, err := e.marketData.Book(o.Instrument, clock)
	if err != nil {
		return err
	}
	feeRate := e.feeRate(o.Instrument)
	quoteCcy := o.Instrument.QuoteCcy()
	baseCcy := o.Instrument.BaseCcy()

	var levels []BookLevel
	if o.Side == BuyLong {
		for i := 0; i < book.Book().Asks.Len(); i++ {
			levels = append(levels, book.Book().Asks.At(i))
		}
	} else {
		for i := 0; i < book.Book().Bids.Len(); i++ {
			levels = append(levels, book.Book().Bids.At(i))
		}
	}

	for _, level := range levels {
		if o.LeftAmount() == 0 {
			break
		}
		exec := o.LeftAmount()
		if level.Size < exec {
			exec = level.Size
		}
		if o.Side == BuyLong {
			cost := level.Price * exec
			if cost > e.balance.Get(quoteCcy) {
				return o.Insufficient()
			}
			if err := e.balance.Debit(quoteCcy, cost); err != nil {
				return err
			}
			if err := e.balance.Credit(baseCcy, exec*(1-feeRate)); err != nil {
				return err
			}
			if err := o.Exe(clock, level.Price, exec, cost*feeRate); err != nil {
				return err
			}
		} else {
			if exec > e.balance.Get(baseCcy) {
				return o.Insufficient()
			}
			if err := e.balance.Debit(baseCcy, exec); err != nil {
				return err
			}
			proceeds := exec * level.Price
			if err := e.balance.Credit(quoteCcy, proceeds*(1-feeRate)); err != nil {
				return err
			}
			if err := o.Exe(clock, level.Price, exec, proceeds*feeRate); err != nil {
				return err
			}
		}
	}

	if o.LeftAmount() > 0 && o.Status == OrderOpen {
		return o.Insufficient()
	}
	return nil
}

// executeFuturesOrder walks the side dictated by (action, side) — asks for
// opening longs and closing shorts, bids otherwise — opening or closing the
// matching position level by level.
func (e *Exchange) executeFuturesOrder(o *Order) error {
	if !usdQuoteCcys[o.Instrument.QuoteCcy()] {
		return fmt.Errorf("%w: %s", ErrUnsupportedQuote, o.Instrument.QuoteCcy())
	}
	clock := e.clock.Now()
	book, err := e.marketData.Book(o.Instrument, clock)
	if err != nil {
		return err
	}
	contractSize, err := o.Instrument.ContractSize()
	if err != nil {
		return err
	}
	feeRate := e.feeRate(o.Instrument)
	quoteCcy := o.Instrument.QuoteCcy()

	walkAsks := (o.Action == ActionOpen && o.Side == BuyLong) || (o.Action == ActionClose && o.Side == SellShort)

	var levels []BookLevel
	if walkAsks {
		for i := 0; i < book.Book().Asks.Len(); i++ {
			levels = append(levels, book.Book().Asks.At(i))
		}
	} else {
		for i := 0; i < book.Book().Bids.Len(); i++ {
			levels = append(levels, book.Book().Bids.At(i))
		}
	}

	for _, level := range levels {
		if o.LeftAmount() == 0 {
			break
		}
		exec := o.LeftAmount()
		if level.Size < exec {
			exec = level.Size
		}
		execInt := int(exec)
		if execInt == 0 {
			continue
		}
		execF := float64(execInt)

		if o.Action == ActionOpen {
			notional := level.Price * execF * contractSize
			margin := notional / o.Leverage
			fee := notional * feeRate
			cost := margin + fee
			if cost > e.balance.Get(quoteCcy) {
				return o.Insufficient()
			}
			if err := e.positions.Open(o.Instrument, o.Side, o.Leverage, level.Price, execInt); err != nil {
				return err
			}
			if err := e.balance.Debit(quoteCcy, cost); err != nil {
				return err
			}
			if err := o.Exe(clock, level.Price, execF, fee); err != nil {
				return err
			}
		} else {
			fee := level.Price * execF * contractSize * feeRate
			if e.balance.Get(quoteCcy)-fee < 0 {
				return o.Insufficient()
			}
			amount, err := e.positions.Close(o.Instrument, o.Side, o.Leverage, level.Price, execInt)
			if err != nil {
				return err
			}
			// Credit the settlement then debit the fee separately; the fee
			// can exceed the settlement on a near-total loss, and the
			// pre-check above guarantees the debit still clears.
			if err := e.balance.Credit(quoteCcy, amount); err != nil {
				return err
			}
			if err := e.balance.Debit(quoteCcy, fee); err != nil {
				return err
			}
			if err := o.Exe(clock, level.Price, execF, fee); err != nil {
				return err
			}
		}
	}

	if o.LeftAmount() > 0 && o.Status == OrderOpen {
		return o.Insufficient()
	}
	return nil
}
