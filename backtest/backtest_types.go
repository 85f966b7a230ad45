package backtest

import (
	"errors"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/thrasher-corp/inkback/execution/costs"
	"github.com/thrasher-corp/inkback/holdings"
	"github.com/thrasher-corp/inkback/statistics"
	"github.com/thrasher-corp/inkback/strategy"
)

var (
	// ErrNilStrategy is returned when a run is started without a strategy
	ErrNilStrategy = errors.New("strategy is nil")
	// ErrStrategyFault wraps a strategy error or recovered panic, the run
	// stops and carries it as its failure
	ErrStrategyFault = errors.New("strategy fault")
	// ErrNoCells is returned when a sweep is started with nothing to run
	ErrNoCells = errors.New("sweep has no cells")
)

// Settings carries the run inputs shared by every cell of a sweep
type Settings struct {
	InitialCash decimal.Decimal
	Costs       costs.Costs
	// RiskFreeRate is the annual rate the sharpe ratio discounts by,
	// as a fraction
	RiskFreeRate decimal.Decimal
}

// Result is the complete record of one run. A failed run keeps whatever
// was accounted before the failure for diagnosis and sets Failure
type Result struct {
	ID       uuid.UUID
	Strategy string
	// Label distinguishes runs in reports, the parameter set by default
	Label       string
	Params      strategy.Params
	Report      *statistics.Report
	EquityCurve []holdings.Snapshot
	Trades      []holdings.Trade
	Failure     error
}

// Failed returns whether the run produced no usable report
func (r *Result) Failed() bool {
	return r == nil || r.Failure != nil || r.Report == nil
}

// Cell pairs a strategy with one parameter set of a sweep
type Cell struct {
	Strategy string
	Params   strategy.Params
}

// SweepResult holds every cell's result in generation order, the order is
// never reshuffled by completion timing, along with the shared buy and
// hold benchmark
type SweepResult struct {
	Runs      []*Result
	Benchmark *Result
}
