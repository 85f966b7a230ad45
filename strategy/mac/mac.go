// Package mac implements a simple moving average crossover strategy
package mac

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
	Name           = "mac"
	shortWindowKey = "short_window"
	longWindowKey  = "long_window"
	takeProfitKey  = "tp"
	stopLossKey    = "sl"
	description    = `Trades the crossover of two simple moving averages: entering long when the short average crosses above the long average and exiting when it crosses back below, with optional take profit and stop loss fractions`
)

// Strategy is an implementation of the strategy.Handler interface
type Strategy struct {
	base.Strategy
	shortWindow int
	longWindow  int
	takeProfit  decimal.Decimal
	stopLoss    decimal.Decimal

	closes     []float64
	lastSignal order.Side
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

// OnCandle appends the close to the rolling window and trades the
// crossover once enough history exists. The position the base tracks is
// checked for a take profit or stop loss exit before any new signal
func (s *Strategy) OnCandle(candle, _ *data.Candle) (*order.Order, error) {
	if candle == nil {
		return nil, base.ErrNilCandle
	}
	closePrice := candle.Close
	s.closes = append(s.closes, closePrice.InexactFloat64())
	if len(s.closes) > s.longWindow {
		s.closes = s.closes[1:]
	}
	if len(s.closes) < s.longWindow {
		// not enough data for signal generation
		return nil, nil
	}

	if s.InPosition() && s.ShouldExit(closePrice, s.takeProfit, s.stopLoss) {
		exit := s.ExitSide()
		s.MarkExit()
		return order.New(exit, order.Market, closePrice, s.Size(), "risk exit")
	}

	shortMA := indicators.SMA(s.closes, s.shortWindow)
	longMA := indicators.SMA(s.closes, s.longWindow)
	if len(shortMA) == 0 || len(longMA) == 0 {
		return nil, nil
	}

	var signal order.Side
	switch {
	case shortMA[len(shortMA)-1] > longMA[len(longMA)-1]:
		signal = order.Buy
	case shortMA[len(shortMA)-1] < longMA[len(longMA)-1]:
		signal = order.Sell
	default:
		return nil, nil
	}
	if signal == s.lastSignal {
		return nil, nil
	}
	s.lastSignal = signal

	if signal == order.Buy && !s.InPosition() {
		s.MarkEntry(order.Buy, closePrice)
		return order.New(order.Buy, order.Market, closePrice, s.Size(), "golden cross")
	}
	if signal == order.Sell && s.PositionSide() == order.Buy {
		s.MarkExit()
		return order.New(order.Sell, order.Market, closePrice, s.Size(), "death cross")
	}
	return nil, nil
}

// SetParams applies a sweep cell's values to the strategy
func (s *Strategy) SetParams(params strategy.Params) error {
	for k := range params {
		switch k {
		case shortWindowKey:
			short, _ := params.IntValue(k)
			if short <= 0 {
				return fmt.Errorf("%w: %v must be positive, received %v", base.ErrInvalidParams, k, short)
			}
			s.shortWindow = short
		case longWindowKey:
			long, _ := params.IntValue(k)
			if long <= 0 {
				return fmt.Errorf("%w: %v must be positive, received %v", base.ErrInvalidParams, k, long)
			}
			s.longWindow = long
		case takeProfitKey:
			tp, _ := params.DecimalValue(k)
			if tp.IsNegative() {
				return fmt.Errorf("%w: %v cannot be negative", base.ErrInvalidParams, k)
			}
			s.takeProfit = tp
		case stopLossKey:
			sl, _ := params.DecimalValue(k)
			if sl.IsNegative() {
				return fmt.Errorf("%w: %v cannot be negative", base.ErrInvalidParams, k)
			}
			s.stopLoss = sl
		case base.SizeKey:
			s.ApplySize(params)
		default:
			return fmt.Errorf("%w: unrecognised key %v", base.ErrInvalidParams, k)
		}
	}
	if s.shortWindow >= s.longWindow {
		return fmt.Errorf("%w: %v %v must be less than %v %v",
			base.ErrInvalidParams, shortWindowKey, s.shortWindow, longWindowKey, s.longWindow)
	}
	return nil
}

// SetDefaults sets the parameters to their default values
func (s *Strategy) SetDefaults() {
	s.shortWindow = 50
	s.longWindow = 150
	s.takeProfit = decimal.NewFromFloat(0.05)
	s.stopLoss = decimal.NewFromFloat(0.075)
}
