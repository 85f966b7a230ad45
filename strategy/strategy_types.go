package strategy

import (
	"errors"

	"github.com/thrasher-corp/inkback/data"
	"github.com/thrasher-corp/inkback/order"
)

var (
	// ErrStrategyNotFound is returned when a strategy name has no registered
	// constructor. Please ensure the strategy field is spelled properly in
	// your config
	ErrStrategyNotFound = errors.New("strategy not found")
	// ErrAlreadyRegistered is returned when a strategy name is registered
	// twice
	ErrAlreadyRegistered = errors.New("strategy already registered")
	// ErrNilConstructor is returned when a nil constructor is registered
	ErrNilConstructor = errors.New("received nil strategy constructor")
)

// Handler is the capability a backtest run consults once per candle. A
// returned order is a request to the engine, not a guarantee of execution.
// Implementations may hold private indicator state between calls but must
// not perform blocking I/O, run throughput and determinism depend on it.
// All risk management, stops, sizing and exposure limits, belongs to the
// implementation
type Handler interface {
	Name() string
	Description() string
	// OnCandle is invoked exactly once per candle in strictly increasing
	// time order. previous is nil on the first candle of a series
	OnCandle(current, previous *data.Candle) (*order.Order, error)
	SetParams(params Params) error
	SetDefaults()
}

// Params is one coordinate of a sweep grid, parameter name to value.
// Strategies parse what they need in SetParams and reject the rest
type Params map[string]float64

// Grid declares the value range swept per parameter. The cartesian product
// of all ranges becomes the sweep's parameter sets
type Grid map[string][]float64
