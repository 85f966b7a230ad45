// Package backtest replays historical candles through strategies and
// accounts the outcome. Orders decided on one candle can only fill from
// the next candle onwards, a strategy never trades on a price it has
// already seen close
package backtest

import (
	"errors"
	"fmt"

	"github.com/gofrs/uuid"

	"github.com/thrasher-corp/inkback/data"
	"github.com/thrasher-corp/inkback/execution"
	"github.com/thrasher-corp/inkback/holdings"
	"github.com/thrasher-corp/inkback/log"
	"github.com/thrasher-corp/inkback/statistics"
	"github.com/thrasher-corp/inkback/strategy"
)

// Run replays the series through one configured strategy instance. Setup
// problems return an error, strategy faults mid run are carried in the
// result's Failure with everything accounted up to that point
func Run(h strategy.Handler, series *data.Series, settings Settings) (*Result, error) {
	if h == nil {
		return nil, ErrNilStrategy
	}
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

	result := &Result{
		ID:       id,
		Strategy: h.Name(),
		Label:    h.Name(),
	}
	if err := runLoop(h, cursor, account, exec); err != nil {
		result.Failure = err
		log.Errorf(log.BackTest, "run %v %v failed: %v", result.ID, result.Strategy, err)
	} else if report, errCalc := statistics.Calculate(account, series.Interval(),
		statistics.CalcOptions{RiskFreeRate: settings.RiskFreeRate}); errCalc != nil {
		result.Failure = errCalc
	} else {
		result.Report = report
	}
	result.EquityCurve = account.Snapshots
	result.Trades = account.Trades
	return result, nil
}

// runLoop walks the series applying the fill, mark, decide order per
// candle. Fills are processed before the strategy sees the candle so an
// order placed on candle i can never execute against candle i itself
func runLoop(h strategy.Handler, cursor *data.Handler, account *holdings.Account, exec *execution.Model) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: recovered panic: %v", ErrStrategyFault, r)
		}
	}()

	for {
		candle, ok := cursor.Next()
		if !ok {
			break
		}
		index := cursor.Offset() - 1

		fill, errProc := exec.ProcessCandle(candle, index)
		if errProc != nil {
			return errProc
		}
		if fill != nil {
			if errFill := account.ProcessFill(fill); errFill != nil {
				return errFill
			}
			log.Debugf(log.BackTest, "candle %v filled %v %v at %v fee %v",
				index, fill.Order.Side, fill.Amount, fill.Price, fill.Fee)
		}
		if errSnap := account.UpdateSnapshot(candle); errSnap != nil {
			return errSnap
		}

		o, errDecide := h.OnCandle(candle, cursor.Previous())
		if errDecide != nil {
			return fmt.Errorf("%w: %w", ErrStrategyFault, errDecide)
		}
		if o == nil {
			continue
		}
		switch errSubmit := exec.Submit(o, index, candle.Time); {
		case errSubmit == nil:
		case errors.Is(errSubmit, execution.ErrOrderOutstanding):
			account.RejectedOrders++
			log.Debugf(log.BackTest, "candle %v order rejected: %v", index, errSubmit)
		default:
			log.Warnf(log.BackTest, "candle %v dropped invalid order: %v", index, errSubmit)
		}
	}

	if expired := exec.ExpireOutstanding(); expired != nil {
		account.ExpiredOrders++
		log.Debugf(log.BackTest, "order %v expired with the series exhausted", expired.ID)
	}
	return nil
}
