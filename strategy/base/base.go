// Package base holds the plumbing the built in strategies embed: order
// sizing, the strategy's own view of its position and the shared take
// profit / stop loss exit rule
package base

import (
	"github.com/shopspring/decimal"

	"github.com/thrasher-corp/inkback/order"
	"github.com/thrasher-corp/inkback/strategy"
)

// SizeKey is the conventional parameter naming how many units each entry
// order requests
const SizeKey = "size"

var defaultSize = decimal.NewFromInt(1)

// Strategy is the embeddable base for strategy implementations. The
// position it tracks is the strategy's own belief updated at decision
// time, the engine's accounting remains the source of truth for equity
type Strategy struct {
	size decimal.Decimal

	side  order.Side
	entry decimal.Decimal
}

// ApplySize reads the conventional size parameter, falling back to a
// single unit. Sizing belongs to the strategy, the engine only requires a
// positive amount
func (s *Strategy) ApplySize(params strategy.Params) {
	s.size = params.DecimalValueOr(SizeKey, defaultSize)
}

// Size returns how many units entry orders request
func (s *Strategy) Size() decimal.Decimal {
	if !s.size.IsPositive() {
		return defaultSize
	}
	return s.size
}

// MarkEntry records the side and price the strategy believes it entered at
func (s *Strategy) MarkEntry(side order.Side, price decimal.Decimal) {
	s.side = side
	s.entry = price
}

// MarkExit clears the tracked position
func (s *Strategy) MarkExit() {
	s.side = ""
	s.entry = decimal.Zero
}

// InPosition returns whether the strategy believes it holds a position
func (s *Strategy) InPosition() bool {
	return s.side == order.Buy || s.side == order.Sell
}

// PositionSide returns the tracked side, empty when flat
func (s *Strategy) PositionSide() order.Side {
	return s.side
}

// EntryPrice returns the tracked entry price, zero when flat
func (s *Strategy) EntryPrice() decimal.Decimal {
	return s.entry
}

// ShouldExit applies the shared take profit / stop loss rule against a
// close price. tp and sl are fractions of the entry price, a non-positive
// fraction disables that side of the rule
func (s *Strategy) ShouldExit(close, tp, sl decimal.Decimal) bool {
	if !s.InPosition() || !s.entry.IsPositive() {
		return false
	}
	one := decimal.NewFromInt(1)
	if s.side == order.Buy {
		if tp.IsPositive() && close.GreaterThanOrEqual(s.entry.Mul(one.Add(tp))) {
			return true
		}
		return sl.IsPositive() && close.LessThanOrEqual(s.entry.Mul(one.Sub(sl)))
	}
	if tp.IsPositive() && close.LessThanOrEqual(s.entry.Mul(one.Sub(tp))) {
		return true
	}
	return sl.IsPositive() && close.GreaterThanOrEqual(s.entry.Mul(one.Add(sl)))
}

// ExitSide returns the order side that flattens the tracked position
func (s *Strategy) ExitSide() order.Side {
	if s.side == order.Buy {
		return order.Sell
	}
	return order.Buy
}
