// Package script runs user supplied tengo scripts as strategies. A script
// is compiled once at registration, sweeps hand each run its own clone of
// the bytecode so cells never share state.
//
// Every candle the engine sets these globals before executing the script:
//
//	open, high, low, close, volume   current candle values
//	prev_close                       previous close, zero on the first candle
//	closes                           recent closes oldest first, capped
//	position                         "long", "short" or "" when flat
//	entry_price                      tracked entry price, zero when flat
//	params                           the run's parameter map
//
// The script assigns signal = "buy" or "sell" to trade, anything else
// stands pat, and may assign quantity to override the default order size.
// The "indicators" module exposes sma, ema and rsi over a value array:
//
//	ind := import("indicators")
//	fast := ind.sma(closes, 10)
//	slow := ind.sma(closes, 30)
//	if !is_undefined(fast) && !is_undefined(slow) {
//		if position == "" && fast > slow {
//			signal = "buy"
//		} else if position == "long" && fast < slow {
//			signal = "sell"
//		}
//	}
package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/shopspring/decimal"

	"github.com/thrasher-corp/inkback/data"
	"github.com/thrasher-corp/inkback/order"
	"github.com/thrasher-corp/inkback/strategy"
	"github.com/thrasher-corp/inkback/strategy/base"
)

const (
	signalName   = "signal"
	quantityName = "quantity"
	// maxHistory caps the closes array handed to scripts
	maxHistory  = 512
	description = "user scripted strategy"
)

var (
	// ErrNoSource is returned when registering an empty script
	ErrNoSource = errors.New("script source is empty")
	// ErrNoName is returned when registering a script without a name
	ErrNoName = errors.New("script name is empty")
	// ErrCompileFailed is returned when a script cannot be compiled
	ErrCompileFailed = errors.New("script compile failed")
	// ErrNotCompiled is returned when a strategy instance executes without
	// registered bytecode
	ErrNotCompiled = errors.New("script is not compiled")
	// ErrUnknownSignal is returned when a script assigns a signal value
	// other than buy, sell or empty
	ErrUnknownSignal = errors.New("unknown script signal")
)

var stdlibModules = []string{"math", "text", "times", "fmt", "json", "rand", "enum"}

// Strategy executes registered tengo bytecode every candle
type Strategy struct {
	base.Strategy
	name     string
	params   strategy.Params
	compiled *tengo.Compiled
	closes   []float64
}

// RegisterScript compiles src and registers it under name so runs and
// sweeps can construct it like any built in strategy
func RegisterScript(name string, src []byte) error {
	if name == "" {
		return ErrNoName
	}
	if len(src) == 0 {
		return fmt.Errorf("%w for %v", ErrNoSource, name)
	}
	master, err := compile(src)
	if err != nil {
		return fmt.Errorf("%v: %w", name, err)
	}
	name = strings.ToLower(name)
	return strategy.Register(name, func() strategy.Handler {
		return &Strategy{name: name, compiled: master.Clone()}
	})
}

// RegisterFile loads and registers a script, deriving the strategy name
// from the file name
func RegisterFile(file string) error {
	src, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return RegisterScript(name, src)
}

func compile(src []byte) (*tengo.Compiled, error) {
	s := tengo.NewScript(src)
	modules := stdlib.GetModuleMap(stdlibModules...)
	modules.AddBuiltinModule("indicators", indicatorModule)
	s.SetImports(modules)

	defaults := map[string]interface{}{
		"open":        0.0,
		"high":        0.0,
		"low":         0.0,
		"close":       0.0,
		"volume":      0.0,
		"prev_close":  0.0,
		"closes":      []interface{}{},
		"position":    "",
		"entry_price": 0.0,
		"params":      map[string]interface{}{},
		signalName:    "",
		quantityName:  0.0,
	}
	for k, v := range defaults {
		if err := s.Add(k, v); err != nil {
			return nil, err
		}
	}
	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompileFailed, err)
	}
	return compiled, nil
}

// Name returns the name the script was registered under
func (s *Strategy) Name() string {
	return s.name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	return description
}

// OnCandle feeds the candle to the script and translates its signal into
// an order. Script runtime errors abort the run, the script owns its own
// sizing and position keeping beyond the tracked entry the engine mirrors
func (s *Strategy) OnCandle(candle, previous *data.Candle) (*order.Order, error) {
	if candle == nil {
		return nil, base.ErrNilCandle
	}
	if s.compiled == nil {
		return nil, fmt.Errorf("%w: %v", ErrNotCompiled, s.name)
	}

	closePrice := candle.Close
	s.closes = append(s.closes, closePrice.InexactFloat64())
	if len(s.closes) > maxHistory {
		s.closes = s.closes[1:]
	}

	prevClose := 0.0
	if previous != nil {
		prevClose = previous.Close.InexactFloat64()
	}

	globals := map[string]interface{}{
		"open":        candle.Open.InexactFloat64(),
		"high":        candle.High.InexactFloat64(),
		"low":         candle.Low.InexactFloat64(),
		"close":       closePrice.InexactFloat64(),
		"volume":      candle.Volume.InexactFloat64(),
		"prev_close":  prevClose,
		"closes":      floatsToInterfaces(s.closes),
		"position":    positionLabel(s.PositionSide()),
		"entry_price": s.EntryPrice().InexactFloat64(),
		"params":      paramsToInterfaces(s.params),
		signalName:    "",
		quantityName:  0.0,
	}
	for k, v := range globals {
		if err := s.compiled.Set(k, v); err != nil {
			return nil, err
		}
	}
	if err := s.compiled.Run(); err != nil {
		return nil, fmt.Errorf("%v: %w", s.name, err)
	}

	sig := s.compiled.Get(signalName).String()
	if sig == "" {
		return nil, nil
	}
	var side order.Side
	switch sig {
	case "buy":
		side = order.Buy
	case "sell":
		side = order.Sell
	default:
		return nil, fmt.Errorf("%w %q from %v", ErrUnknownSignal, sig, s.name)
	}

	amount := s.Size()
	if qty := s.compiled.Get(quantityName).Float(); qty > 0 {
		amount = decimal.NewFromFloat(qty)
	}

	if s.InPosition() && side == s.ExitSide() {
		s.MarkExit()
	} else {
		s.MarkEntry(side, closePrice)
	}
	return order.New(side, order.Market, closePrice, amount, fmt.Sprintf("script signal %v", sig))
}

// SetParams stores the run's parameters for the script to read, scripts
// perform their own validation at execution time
func (s *Strategy) SetParams(params strategy.Params) error {
	s.params = params.Clone()
	s.ApplySize(params)
	return nil
}

// SetDefaults sets the parameters to their default values
func (s *Strategy) SetDefaults() {
	s.params = strategy.Params{}
	s.closes = nil
}

func positionLabel(side order.Side) string {
	switch side {
	case order.Buy:
		return "long"
	case order.Sell:
		return "short"
	}
	return ""
}

func floatsToInterfaces(values []float64) []interface{} {
	out := make([]interface{}, len(values))
	for i := range values {
		out[i] = values[i]
	}
	return out
}

func paramsToInterfaces(params strategy.Params) map[string]interface{} {
	out := make(map[string]interface{}, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
