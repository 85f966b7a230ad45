// Package rsi trades relative strength index thresholds
package rsi

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-ta/indicators"

	"github.com/thrasher-corp/inkback/data"
	"github.com/thrasher-corp/inkback/order"
	"github.com/thrasher-corp/inkback/strategy"
	"github.com/thrasher-corp/inkback/strategy/base"
)

const (
	// Name is the strategy name
	Name        = "rsi"
	periodKey   = "period"
	rsiLowKey   = "rsi_low"
	rsiHighKey  = "rsi_high"
	description = `The relative strength index is a technical indicator used in the analysis of financial markets. It is intended to chart the current and historical strength or weakness of a stock or market based on the closing prices of a recent trading period`
)

// Strategy is an implementation of the strategy.Handler interface
type Strategy struct {
	base.Strategy
	period  int
	rsiLow  decimal.Decimal
	rsiHigh decimal.Decimal

	closes []float64
}

func init() {
	if err := strategy.Register(Name, func() strategy.Handler { return &Strategy{} }); err != nil {
		panic(err)
	}
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	return description
}

// OnCandle buys when the index sinks to the low threshold and sells the
// position back when it reaches the high threshold
func (s *Strategy) OnCandle(candle, _ *data.Candle) (*order.Order, error) {
	if candle == nil {
		return nil, base.ErrNilCandle
	}
	closePrice := candle.Close
	s.closes = append(s.closes, closePrice.InexactFloat64())
	if len(s.closes) <= s.period {
		// not enough data for signal generation
		return nil, nil
	}

	rsi := indicators.RSI(s.closes, s.period)
	latest := decimal.NewFromFloat(rsi[len(rsi)-1])

	switch {
	case latest.LessThanOrEqual(s.rsiLow) && !s.InPosition():
		s.MarkEntry(order.Buy, closePrice)
		return order.New(order.Buy, order.Market, closePrice, s.Size(),
			fmt.Sprintf("RSI at %v", latest.Round(2)))
	case latest.GreaterThanOrEqual(s.rsiHigh) && s.PositionSide() == order.Buy:
		s.MarkExit()
		return order.New(order.Sell, order.Market, closePrice, s.Size(),
			fmt.Sprintf("RSI at %v", latest.Round(2)))
	}
	return nil, nil
}

// SetParams applies a sweep cell's values to the strategy
func (s *Strategy) SetParams(params strategy.Params) error {
	for k := range params {
		switch k {
		case periodKey:
			period, _ := params.IntValue(k)
			if period <= 0 {
				return fmt.Errorf("%w: %v must be positive, received %v", base.ErrInvalidParams, k, period)
			}
			s.period = period
		case rsiLowKey:
			low, _ := params.DecimalValue(k)
			if low.IsNegative() {
				return fmt.Errorf("%w: %v cannot be negative", base.ErrInvalidParams, k)
			}
			s.rsiLow = low
		case rsiHighKey:
			high, _ := params.DecimalValue(k)
			if high.GreaterThan(decimal.NewFromInt(100)) {
				return fmt.Errorf("%w: %v cannot exceed 100", base.ErrInvalidParams, k)
			}
			s.rsiHigh = high
		case base.SizeKey:
			s.ApplySize(params)
		default:
			return fmt.Errorf("%w: unrecognised key %v", base.ErrInvalidParams, k)
		}
	}
	if s.rsiLow.GreaterThanOrEqual(s.rsiHigh) {
		return fmt.Errorf("%w: %v %v must be below %v %v",
			base.ErrInvalidParams, rsiLowKey, s.rsiLow, rsiHighKey, s.rsiHigh)
	}
	return nil
}

// SetDefaults sets the parameters to their default values
func (s *Strategy) SetDefaults() {
	s.period = 14
	s.rsiLow = decimal.NewFromInt(30)
	s.rsiHigh = decimal.NewFromInt(70)
}
