// Package statistics derives the summary metrics of a completed run from
// its account records. Degenerate inputs such as zero variance, zero
// divisors or tradeless runs produce zero valued metrics, never faults
package statistics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/thrasher-corp/inkback/common"
	gctmath "github.com/thrasher-corp/inkback/common/math"
	"github.com/thrasher-corp/inkback/holdings"
)

var one = decimal.NewFromInt(1)

// IntervalsPerYear returns how many candle intervals fit in a calendar
// year of 365 days
func IntervalsPerYear(interval time.Duration) float64 {
	if interval <= 0 {
		return 0
	}
	return float64(365*24*time.Hour) / float64(interval)
}

// Calculate builds the report for a completed run from its account
func Calculate(a *holdings.Account, interval time.Duration, opts CalcOptions) (*Report, error) {
	if a == nil {
		return nil, common.ErrNilArguments
	}
	if len(a.Snapshots) == 0 {
		return nil, ErrNoSnapshots
	}

	r := &Report{
		InitialEquity:  a.InitialCash,
		FinalEquity:    a.FinalEquity(),
		MaxDrawdown:    CalculateMaxDrawdown(a.Snapshots),
		TotalFees:      a.TotalFees,
		RejectedOrders: a.RejectedOrders,
		ExpiredOrders:  a.ExpiredOrders,
	}
	if a.InitialCash.IsPositive() {
		r.TotalReturn = r.FinalEquity.Div(a.InitialCash).Sub(one)
	}

	intervalsPerYear := IntervalsPerYear(interval)
	r.AnnualizedReturn = decimal.NewFromFloat(gctmath.CalculateCompoundAnnualGrowthRate(
		a.InitialCash.InexactFloat64(),
		r.FinalEquity.InexactFloat64(),
		intervalsPerYear,
		float64(len(a.Snapshots)),
	))
	r.SharpeRatio = calculateSharpe(a.Snapshots, opts.RiskFreeRate, intervalsPerYear)
	calculateTradeStats(r, a.Trades)
	return r, nil
}

// CalculateMaxDrawdown returns the deepest peak to trough decline across
// an equity curve as a fraction of the peak. A curve that never declines
// reports zero
func CalculateMaxDrawdown(snapshots []holdings.Snapshot) Swing {
	if len(snapshots) == 0 {
		return Swing{}
	}
	peak := Point{Time: snapshots[0].Time, Equity: snapshots[0].Equity}
	deepest := Swing{Highest: peak, Lowest: peak}
	for i := range snapshots {
		if snapshots[i].Equity.GreaterThan(peak.Equity) {
			peak = Point{Time: snapshots[i].Time, Equity: snapshots[i].Equity}
			continue
		}
		if !peak.Equity.IsPositive() {
			continue
		}
		drawdown := peak.Equity.Sub(snapshots[i].Equity).Div(peak.Equity)
		if drawdown.GreaterThan(deepest.Drawdown) {
			deepest = Swing{
				Highest:  peak,
				Lowest:   Point{Time: snapshots[i].Time, Equity: snapshots[i].Equity},
				Drawdown: drawdown,
			}
		}
	}
	return deepest
}

// calculateSharpe annualises the per interval equity returns. Snapshots
// with zero prior equity contribute a zero return rather than a fault
func calculateSharpe(snapshots []holdings.Snapshot, riskFreeRate decimal.Decimal, intervalsPerYear float64) decimal.Decimal {
	if len(snapshots) < 2 || intervalsPerYear <= 0 {
		return decimal.Zero
	}
	returns := make([]float64, 0, len(snapshots)-1)
	for i := 1; i < len(snapshots); i++ {
		prev := snapshots[i-1].Equity
		if prev.IsZero() {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, snapshots[i].Equity.Sub(prev).Div(prev).InexactFloat64())
	}
	riskFreePerInterval := riskFreeRate.InexactFloat64() / intervalsPerYear
	return decimal.NewFromFloat(gctmath.CalculateSharpeRatio(returns, riskFreePerInterval, intervalsPerYear))
}

func calculateTradeStats(r *Report, trades []holdings.Trade) {
	r.TotalTrades = len(trades)
	if len(trades) == 0 {
		return
	}
	var totalDuration time.Duration
	for i := range trades {
		totalDuration += trades[i].Duration
		switch trades[i].PnL.Sign() {
		case 1:
			r.WinningTrades++
			r.GrossProfit = r.GrossProfit.Add(trades[i].PnL)
			if trades[i].PnL.GreaterThan(r.LargestWin) {
				r.LargestWin = trades[i].PnL
			}
		case -1:
			r.LosingTrades++
			r.GrossLoss = r.GrossLoss.Add(trades[i].PnL)
			if trades[i].PnL.LessThan(r.LargestLoss) {
				r.LargestLoss = trades[i].PnL
			}
		}
	}
	r.AvgTradeDuration = totalDuration / time.Duration(len(trades))
	r.WinRate = decimal.NewFromInt(int64(r.WinningTrades)).
		Div(decimal.NewFromInt(int64(r.TotalTrades)))
	if r.WinningTrades > 0 {
		r.AvgWin = r.GrossProfit.Div(decimal.NewFromInt(int64(r.WinningTrades)))
	}
	if r.LosingTrades > 0 {
		r.AvgLoss = r.GrossLoss.Div(decimal.NewFromInt(int64(r.LosingTrades)))
	}
	switch {
	case r.GrossLoss.IsZero() && r.GrossProfit.IsPositive():
		r.ProfitFactor = profitFactorCap
	case !r.GrossLoss.IsZero():
		r.ProfitFactor = r.GrossProfit.Div(r.GrossLoss.Abs())
	}
}
