// Package footprint trades order flow imbalance parsed from the price
// ladder attached to footprint candles
package footprint

import (
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/shopspring/decimal"

	"github.com/thrasher-corp/inkback/data"
	"github.com/thrasher-corp/inkback/log"
	"github.com/thrasher-corp/inkback/order"
	"github.com/thrasher-corp/inkback/strategy"
	"github.com/thrasher-corp/inkback/strategy/base"
)

const (
	// Name is the strategy name
	Name = "footprint"
	// AnnotationKey names the candle annotation carrying the price ladder,
	// a JSON object of price level to [buy volume, sell volume]
	AnnotationKey         = "footprint_data"
	imbalanceThresholdKey = "imbalance_threshold"
	volumeThresholdKey    = "volume_threshold"
	lookbackPeriodsKey    = "lookback_periods"
	takeProfitKey         = "tp"
	stopLossKey           = "sl"
	description           = `Compares aggressive buy and sell volume at each price level of a footprint candle. A lopsided ladder on the latest candle confirmed by the volume weighted average imbalance of recent candles opens a position in the direction of the pressure`
)

// Strategy is an implementation of the strategy.Handler interface
type Strategy struct {
	base.Strategy
	imbalanceThreshold decimal.Decimal
	volumeThreshold    decimal.Decimal
	lookbackPeriods    int
	takeProfit         decimal.Decimal
	stopLoss           decimal.Decimal

	history    []periodImbalance
	lastSignal order.Side
}

// periodImbalance caches one candle's parsed ladder so the rolling average
// does not reparse the window every period
type periodImbalance struct {
	imbalance decimal.Decimal
	volume    decimal.Decimal
	parsed    bool
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

// Imbalance sums the ladder and returns signed volume as a fraction of
// total volume, positive when buyers dominated. A candle that traded
// nothing has zero imbalance
func Imbalance(candle *data.Candle) (decimal.Decimal, error) {
	if candle == nil {
		return decimal.Zero, base.ErrNilCandle
	}
	raw, ok := candle.Annotations[AnnotationKey]
	if !ok {
		return decimal.Zero, fmt.Errorf("candle at %v is missing the %v annotation", candle.Time, AnnotationKey)
	}
	var buyTotal, sellTotal int64
	cb := func(_ []byte, v []byte, _ jsonparser.ValueType, _ int) error {
		buy, err := jsonparser.GetInt(v, "[0]")
		if err != nil {
			return err
		}
		sell, err := jsonparser.GetInt(v, "[1]")
		if err != nil {
			return err
		}
		buyTotal += buy
		sellTotal += sell
		return nil
	}
	if err := jsonparser.ObjectEach([]byte(raw), cb); err != nil {
		return decimal.Zero, err
	}
	total := buyTotal + sellTotal
	if total == 0 {
		return decimal.Zero, nil
	}
	return decimal.NewFromInt(buyTotal - sellTotal).Div(decimal.NewFromInt(total)), nil
}

// averageImbalance weights each cached imbalance by its candle's volume.
// It reports false when any candle in the window failed to parse, no
// signal can be trusted until that candle rolls out
func (s *Strategy) averageImbalance() (decimal.Decimal, bool) {
	weighted := decimal.Zero
	totalWeight := decimal.Zero
	for i := range s.history {
		if !s.history[i].parsed {
			return decimal.Zero, false
		}
		weighted = weighted.Add(s.history[i].imbalance.Mul(s.history[i].volume))
		totalWeight = totalWeight.Add(s.history[i].volume)
	}
	if totalWeight.IsZero() {
		return decimal.Zero, true
	}
	return weighted.Div(totalWeight), true
}

// OnCandle parses the latest ladder, manages any open position's take
// profit and stop loss, then opens with the order flow when both the
// latest and the averaged imbalance agree on a direction
func (s *Strategy) OnCandle(candle, _ *data.Candle) (*order.Order, error) {
	if candle == nil {
		return nil, base.ErrNilCandle
	}
	closePrice := candle.Close

	entry := periodImbalance{volume: candle.Volume}
	imbalance, err := Imbalance(candle)
	if err != nil {
		log.Warnf(log.Strategy, "could not parse footprint ladder: %v", err)
	} else {
		entry.imbalance = imbalance
		entry.parsed = true
	}
	s.history = append(s.history, entry)
	if len(s.history) > s.lookbackPeriods {
		s.history = s.history[1:]
	}
	if len(s.history) < s.lookbackPeriods {
		return nil, nil
	}

	if s.InPosition() && s.ShouldExit(closePrice, s.takeProfit, s.stopLoss) {
		exit := s.ExitSide()
		s.MarkExit()
		return order.New(exit, order.Market, closePrice, s.Size(), "risk exit")
	}

	if candle.Volume.LessThan(s.volumeThreshold) {
		return nil, nil
	}
	if !entry.parsed {
		return nil, nil
	}
	average, ok := s.averageImbalance()
	if !ok {
		return nil, nil
	}

	var signal order.Side
	switch {
	case imbalance.GreaterThan(s.imbalanceThreshold) && average.IsPositive():
		signal = order.Buy
	case imbalance.LessThan(s.imbalanceThreshold.Neg()) && average.IsNegative():
		signal = order.Sell
	default:
		return nil, nil
	}
	if signal == s.lastSignal {
		return nil, nil
	}
	s.lastSignal = signal
	s.MarkEntry(signal, closePrice)
	return order.New(signal, order.Market, closePrice, s.Size(),
		fmt.Sprintf("imbalance %v average %v", imbalance.Round(4), average.Round(4)))
}

// SetParams applies a sweep cell's values to the strategy
func (s *Strategy) SetParams(params strategy.Params) error {
	for k := range params {
		switch k {
		case imbalanceThresholdKey:
			threshold, _ := params.DecimalValue(k)
			if threshold.IsNegative() || threshold.GreaterThan(decimal.NewFromInt(1)) {
				return fmt.Errorf("%w: %v must sit within [0, 1]", base.ErrInvalidParams, k)
			}
			s.imbalanceThreshold = threshold
		case volumeThresholdKey:
			volume, _ := params.DecimalValue(k)
			if volume.IsNegative() {
				return fmt.Errorf("%w: %v cannot be negative", base.ErrInvalidParams, k)
			}
			s.volumeThreshold = volume
		case lookbackPeriodsKey:
			lookback, _ := params.IntValue(k)
			if lookback <= 0 {
				return fmt.Errorf("%w: %v must be positive, received %v", base.ErrInvalidParams, k, lookback)
			}
			s.lookbackPeriods = lookback
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
	return nil
}

// SetDefaults sets the parameters to their default values
func (s *Strategy) SetDefaults() {
	s.imbalanceThreshold = decimal.NewFromFloat(0.3)
	s.volumeThreshold = decimal.NewFromInt(500)
	s.lookbackPeriods = 5
	s.takeProfit = decimal.NewFromFloat(0.005)
	s.stopLoss = decimal.NewFromFloat(0.005)
}
