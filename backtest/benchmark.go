package backtest

import (
	"github.com/gofrs/uuid"

	"github.com/thrasher-corp/inkback/data"
	"github.com/thrasher-corp/inkback/execution"
	"github.com/thrasher-corp/inkback/holdings"
	"github.com/thrasher-corp/inkback/log"
	"github.com/thrasher-corp/inkback/order"
	"github.com/thrasher-corp/inkback/statistics"
)

// BenchmarkName labels the buy and hold baseline in results and reports
const BenchmarkName = "buy and hold"

// Benchmark runs the buy and hold baseline every sweep is measured
// against. The full starting cash buys at the first candle's open through
// the same cost model as every other run, then the position is marked to
// market on each candle and never exits
func Benchmark(series *data.Series, settings Settings) (*Result, error) {
	cursor, err := data.NewHandler(series)
	if err != nil {
		return nil, err
	}
	account, err := holdings.NewAccount(settings.InitialCash)
	if err != nil {
		return nil, err
	}
	exec, err := execution.New(settings.Costs)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	first := series.First()
	units := settings.InitialCash.Div(first.Open)
	o, err := order.New(order.Buy, order.Market, first.Open, units, BenchmarkName)
	if err != nil {
		return nil, err
	}
	// submitted before the series begins so it fills at the first open
	if err := exec.Submit(o, -1, first.Time); err != nil {
		return nil, err
	}

	for {
		candle, ok := cursor.Next()
		if !ok {
			break
		}
		fill, errProc := exec.ProcessCandle(candle, cursor.Offset()-1)
		if errProc != nil {
			return nil, errProc
		}
		if fill != nil {
			if errFill := account.ProcessFill(fill); errFill != nil {
				return nil, errFill
			}
			log.Debugf(log.BackTest, "benchmark bought %v at %v fee %v",
				fill.Amount, fill.Price, fill.Fee)
		}
		if errSnap := account.UpdateSnapshot(candle); errSnap != nil {
			return nil, errSnap
		}
	}

	report, err := statistics.Calculate(account, series.Interval(),
		statistics.CalcOptions{RiskFreeRate: settings.RiskFreeRate})
	if err != nil {
		return nil, err
	}
	return &Result{
		ID:          id,
		Strategy:    BenchmarkName,
		Label:       BenchmarkName,
		Report:      report,
		EquityCurve: account.Snapshots,
		Trades:      account.Trades,
	}, nil
}
