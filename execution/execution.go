// Package execution simulates order handling against historical candles.
// Orders submitted while a candle is being decided cannot see that candle's
// future, market orders fill at the next candle's open and limit orders
// fill when a later candle trades through the limit price
package execution

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thrasher-corp/inkback/data"
	"github.com/thrasher-corp/inkback/execution/costs"
	"github.com/thrasher-corp/inkback/order"
)

// New returns an execution model using the supplied cost models. Unknown
// model names are rejected here so fills never have to
func New(c costs.Costs) (*Model, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Model{costs: c}, nil
}

// Submit accepts an order as the single pending order. The order is
// stamped with the candle index and time it was submitted against. When
// another order is already outstanding the submission is marked rejected
// and ErrOrderOutstanding returned
func (m *Model) Submit(o *order.Order, index int, t time.Time) error {
	if o == nil {
		return ErrNilOrder
	}
	if err := o.Validate(); err != nil {
		return err
	}
	if m.pending != nil {
		o.Status = order.Rejected
		return fmt.Errorf("%w since candle %v", ErrOrderOutstanding, m.pending.SubmittedIndex)
	}
	o.Status = order.Pending
	o.SubmittedAt = t
	o.SubmittedIndex = index
	m.pending = o
	return nil
}

// ProcessCandle attempts to fill the pending order against the candle at
// index. Market orders fill at the open adjusted for slippage and spread,
// clamped into the candle's traded range. Limit orders fill at the limit
// price with no slippage when the candle trades through it. Returns nil
// when nothing fills
func (m *Model) ProcessCandle(c *data.Candle, index int) (*Fill, error) {
	if c == nil {
		return nil, ErrNilCandle
	}
	if m.pending == nil {
		return nil, nil
	}
	if index <= m.pending.SubmittedIndex {
		return nil, fmt.Errorf("%w: index %v, submitted at %v",
			errStaleCandle, index, m.pending.SubmittedIndex)
	}
	switch m.pending.Type {
	case order.Market:
		raw := c.Open
		adjusted := m.costs.AdjustPrice(raw, m.pending.Amount, c.Volume, m.pending.IsBuy())
		return m.fill(c, index, raw, fitPriceToCandle(adjusted, c)), nil
	case order.Limit:
		if m.pending.IsBuy() && c.Low.LessThanOrEqual(m.pending.Price) {
			return m.fill(c, index, m.pending.Price, m.pending.Price), nil
		}
		if !m.pending.IsBuy() && c.High.GreaterThanOrEqual(m.pending.Price) {
			return m.fill(c, index, m.pending.Price, m.pending.Price), nil
		}
	}
	return nil, nil
}

func (m *Model) fill(c *data.Candle, index int, raw, executed decimal.Decimal) *Fill {
	o := m.pending
	o.Status = order.Filled
	m.pending = nil
	return &Fill{
		Order:    o,
		Price:    executed,
		Slippage: executed.Sub(raw),
		Fee:      m.costs.CommissionFor(executed, o.Amount),
		Amount:   o.Amount,
		Index:    index,
		Time:     c.Time,
	}
}

// fitPriceToCandle clamps an adjusted price into the candle's traded
// range, nothing executes at a price the market never printed
func fitPriceToCandle(price decimal.Decimal, c *data.Candle) decimal.Decimal {
	if price.LessThan(c.Low) {
		return c.Low
	}
	if price.GreaterThan(c.High) {
		return c.High
	}
	return price
}

// ExpireOutstanding marks any pending order expired and frees the slot,
// called when a series runs out of candles. Returns the expired order or
// nil when the slot was already free
func (m *Model) ExpireOutstanding() *order.Order {
	if m.pending == nil {
		return nil
	}
	o := m.pending
	o.Status = order.Expired
	m.pending = nil
	return o
}

// Outstanding returns the pending order, nil when the slot is free
func (m *Model) Outstanding() *order.Order {
	return m.pending
}

// Reset clears the pending slot while keeping the cost models
func (m *Model) Reset() {
	m.pending = nil
}
