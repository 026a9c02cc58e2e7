// FILE: position.go
// Package main – Aggregate of same-direction futures contracts for a
// (instrument, direction, leverage) key: margin, loan, average prices,
// unrealised P&L, and the margin rate the liquidation sweep watches.
package main

import "fmt"

// PositionStatus summarises a Position's contract mix.
type PositionStatus string

const (
	PositionInit  PositionStatus = "INIT"
	PositionOpen  PositionStatus = "OPEN"
	PositionClose PositionStatus = "CLOSE"
)

// Position aggregates contracts opened at the same (instrument, direction,
// leverage) key, tracking per-contract margin/loan/open-price/close-price
// maps keyed by contract UUID.
type Position struct {
	Instrument *Instrument
	Direction  Direction
	Leverage   float64

	contracts  []*Contract
	margin     map[string]float64
	loan       map[string]float64
	openPrice  map[string]float64
	closePrice map[string]float64
}

// NewPosition creates an empty (INIT) position for the given key.
func NewPosition(inst *Instrument, dir Direction, leverage float64) *Position {
	return &Position{
		Instrument: inst,
		Direction:  dir,
		Leverage:   leverage,
		margin:     map[string]float64{},
		loan:       map[string]float64{},
		openPrice:  map[string]float64{},
		closePrice: map[string]float64{},
	}
}

// Status derives PositionStatus from the current contract mix.
func (p *Position) Status() PositionStatus {
	if len(p.contracts) == 0 {
		return PositionInit
	}
	if p.OpenNum() == 0 {
		return PositionClose
	}
	return PositionOpen
}

// OpenNum is the count of contracts still OPEN.
func (p *Position) OpenNum() int {
	n := 0
	for _, c := range p.contracts {
		if c.Status == ContractOpen {
			n++
		}
	}
	return n
}

// Margin sums margin[uuid] over open contracts only.
func (p *Position) Margin() float64 {
	var total float64
	for _, c := range p.contracts {
		if c.Status == ContractOpen {
			total += p.margin[c.UUID]
		}
	}
	return total
}

// Loan sums loan[uuid] over all tracked entries (open contracts; the entry
// is deleted on close).
func (p *Position) Loan() float64 {
	var total float64
	for _, v := range p.loan {
		total += v
	}
	return total
}

// AOP is the size-weighted average open price over ALL contracts ever held
// (open or closed).
func (p *Position) AOP() float64 {
	if len(p.contracts) == 0 {
		return 0
	}
	var sum float64
	for _, c := range p.contracts {
		sum += p.openPrice[c.UUID]
	}
	return sum / float64(len(p.contracts))
}

// ACP is the size-weighted average close price, valid only once every
// contract has closed.
func (p *Position) ACP() (float64, error) {
	if p.Status() != PositionClose {
		return 0, fmt.Errorf("ACP is only defined once all contracts are closed")
	}
	var sum float64
	for _, c := range p.contracts {
		sum += p.closePrice[c.UUID]
	}
	return sum / float64(len(p.contracts)), nil
}

// Open creates num fresh OPEN contracts at price, requiring the position
// not already be CLOSE, price > 0, num > 0.
func (p *Position) Open(price float64, num int) error {
	if p.Status() == PositionClose {
		return fmt.Errorf("cannot open on a closed position")
	}
	if price <= 0 {
		return fmt.Errorf("open price must be > 0, got %v", price)
	}
	if num <= 0 {
		return fmt.Errorf("open num must be > 0, got %v", num)
	}
	contractSize, err := p.Instrument.ContractSize()
	if err != nil {
		return err
	}
	role := directionRole(p.Direction)
	for i := 0; i < num; i++ {
		c := newContract(p.Instrument, role)
		margin := price * contractSize / p.Leverage
		loan := price*contractSize - margin
		p.contracts = append(p.contracts, c)
		p.openPrice[c.UUID] = price
		p.margin[c.UUID] = margin
		p.loan[c.UUID] = loan
	}
	return nil
}

// Close closes the first num OPEN contracts (in insertion order) at price,
// returning the quote-currency amount to credit. Requires the position not
// already CLOSE, price > 0, 0 < num <= OpenNum().
func (p *Position) Close(price float64, num int) (float64, error) {
	if p.Status() == PositionClose {
		return 0, fmt.Errorf("cannot close a position that is already CLOSE")
	}
	if price <= 0 {
		return 0, fmt.Errorf("close price must be > 0, got %v", price)
	}
	if num <= 0 || num > p.OpenNum() {
		return 0, fmt.Errorf("close num %v out of range (0, %v]", num, p.OpenNum())
	}
	contractSize, err := p.Instrument.ContractSize()
	if err != nil {
		return 0, err
	}

	closed := 0
	var total float64
	for _, c := range p.contracts {
		if closed == num {
			break
		}
		if c.Status != ContractOpen {
			continue
		}
		var delta float64
		if p.Direction == BuyLong {
			delta = price - p.openPrice[c.UUID]
		} else {
			delta = p.openPrice[c.UUID] - price
		}
		total += p.margin[c.UUID] + delta*contractSize
		p.closePrice[c.UUID] = price
		delete(p.margin, c.UUID)
		delete(p.loan, c.UUID)
		c.close()
		closed++
	}

	if total < 0 {
		return 0, fmt.Errorf("%w: settlement %v on position %s/%s/%v", ErrNegativeSettlement, total, p.Instrument.InstID, p.Direction, p.Leverage)
	}
	return total, nil
}

// UProfit is the mark-based unrealised P&L over open contracts only.
func (p *Position) UProfit(mark float64) float64 {
	contractSize, err := p.Instrument.ContractSize()
	if err != nil {
		return 0
	}
	openCount := p.OpenNum()
	if openCount == 0 {
		return 0
	}
	var sumOpen float64
	for _, c := range p.contracts {
		if c.Status == ContractOpen {
			sumOpen += p.openPrice[c.UUID]
		}
	}
	openedAOP := sumOpen / float64(openCount)
	var delta float64
	if p.Direction == BuyLong {
		delta = mark - openedAOP
	} else {
		delta = openedAOP - mark
	}
	return contractSize * float64(openCount) * delta
}

// MarginRate computes (Margin + UProfit) / (contract_size * OPEN_NUM * mark
// * (mmr + feeRate)). Returns an error if OPEN_NUM is zero (no maintenance
// requirement to divide by).
func (p *Position) MarginRate(mark, mmr, feeRate float64) (float64, error) {
	contractSize, err := p.Instrument.ContractSize()
	if err != nil {
		return 0, err
	}
	openCount := p.OpenNum()
	if openCount == 0 {
		return 0, fmt.Errorf("margin rate is undefined for a position with no open contracts")
	}
	denom := contractSize * float64(openCount) * mark * (mmr + feeRate)
	if denom == 0 {
		return 0, fmt.Errorf("margin rate denominator is zero")
	}
	return (p.Margin() + p.UProfit(mark)) / denom, nil
}

// Matches reports whether order targets this position's key: same
// instrument, leverage, and direction/side pairing.
func (p *Position) Matches(o *Order) bool {
	return p.Instrument.Equal(o.Instrument) && p.Leverage == o.Leverage && p.Direction == o.Side
}

// PositionSnapshot is the JSON-friendly, detached view of a position
// emitted by History.
type PositionSnapshot struct {
	InstID    string         `json:"instId"`
	Direction Direction      `json:"direction"`
	Leverage  float64        `json:"leverage"`
	Status    PositionStatus `json:"status"`
	OpenNum   int            `json:"openNum"`
	Margin    float64        `json:"margin"`
	Loan      float64        `json:"loan"`
	AOP       float64        `json:"aop"`
	Contracts []string       `json:"contracts"`
}

// Snapshot returns a JSON-friendly, fully-detached view of the position.
func (p *Position) Snapshot() PositionSnapshot {
	uuids := make([]string, len(p.contracts))
	for i, c := range p.contracts {
		uuids[i] = c.UUID
	}
	return PositionSnapshot{
		InstID:    p.Instrument.InstID,
		Direction: p.Direction,
		Leverage:  p.Leverage,
		Status:    p.Status(),
		OpenNum:   p.OpenNum(),
		Margin:    p.Margin(),
		Loan:      p.Loan(),
		AOP:       p.AOP(),
		Contracts: uuids,
	}
}
