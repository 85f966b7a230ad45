package base

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/thrasher-corp/inkback/order"
	"github.com/thrasher-corp/inkback/strategy"
)

func TestApplySize(t *testing.T) {
	t.Parallel()
	var s Strategy
	assert.True(t, s.Size().Equal(decimal.NewFromInt(1)), "unset size falls back to one unit")

	s.ApplySize(strategy.Params{SizeKey: 5})
	assert.True(t, s.Size().Equal(decimal.NewFromInt(5)))

	s.ApplySize(strategy.Params{})
	assert.True(t, s.Size().Equal(decimal.NewFromInt(1)))
}

func TestPositionTracking(t *testing.T) {
	t.Parallel()
	var s Strategy
	assert.False(t, s.InPosition())

	s.MarkEntry(order.Buy, decimal.NewFromInt(100))
	assert.True(t, s.InPosition())
	assert.Equal(t, order.Buy, s.PositionSide())
	assert.True(t, s.EntryPrice().Equal(decimal.NewFromInt(100)))
	assert.Equal(t, order.Sell, s.ExitSide())

	s.MarkExit()
	assert.False(t, s.InPosition())
	assert.True(t, s.EntryPrice().IsZero())

	s.MarkEntry(order.Sell, decimal.NewFromInt(100))
	assert.Equal(t, order.Buy, s.ExitSide())
}

func TestShouldExitLong(t *testing.T) {
	t.Parallel()
	tp := decimal.NewFromFloat(0.05)
	sl := decimal.NewFromFloat(0.10)

	var s Strategy
	assert.False(t, s.ShouldExit(decimal.NewFromInt(1000), tp, sl), "flat strategies never exit")

	s.MarkEntry(order.Buy, decimal.NewFromInt(100))
	assert.False(t, s.ShouldExit(decimal.NewFromInt(104), tp, sl))
	assert.True(t, s.ShouldExit(decimal.NewFromInt(105), tp, sl), "take profit at entry*(1+tp)")
	assert.False(t, s.ShouldExit(decimal.NewFromInt(91), tp, sl))
	assert.True(t, s.ShouldExit(decimal.NewFromInt(90), tp, sl), "stop loss at entry*(1-sl)")

	assert.False(t, s.ShouldExit(decimal.NewFromInt(1000), decimal.Zero, decimal.Zero),
		"zero fractions disable the rule")
}

func TestShouldExitShort(t *testing.T) {
	t.Parallel()
	tp := decimal.NewFromFloat(0.05)
	sl := decimal.NewFromFloat(0.10)

	var s Strategy
	s.MarkEntry(order.Sell, decimal.NewFromInt(100))
	assert.False(t, s.ShouldExit(decimal.NewFromInt(96), tp, sl))
	assert.True(t, s.ShouldExit(decimal.NewFromInt(95), tp, sl), "short take profit at entry*(1-tp)")
	assert.False(t, s.ShouldExit(decimal.NewFromInt(109), tp, sl))
	assert.True(t, s.ShouldExit(decimal.NewFromInt(110), tp, sl), "short stop loss at entry*(1+sl)")
}
