package statistics

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoSnapshots is returned when a report is requested for an
	// account that never marked to market
	ErrNoSnapshots = errors.New("account has no equity snapshots")
)

// profitFactorCap stands in for infinity when a run banked profits
// without a single losing trade
var profitFactorCap = decimal.NewFromInt(1000)

// Point is an equity observation referenced by a drawdown
type Point struct {
	Time   time.Time
	Equity decimal.Decimal
}

// Swing is a peak to trough equity decline
type Swing struct {
	Highest Point
	Lowest  Point
	// Drawdown is the fraction of the peak given back, 0.25 means a
	// quarter of peak equity was lost
	Drawdown decimal.Decimal
}

// CalcOptions tunes report calculation
type CalcOptions struct {
	// RiskFreeRate is the annual rate subtracted from returns in the
	// sharpe ratio, as a fraction
	RiskFreeRate decimal.Decimal
}

// Report summarises one completed run
type Report struct {
	InitialEquity decimal.Decimal
	FinalEquity   decimal.Decimal
	// TotalReturn is a fraction, 0.1 is a ten percent gain
	TotalReturn      decimal.Decimal
	AnnualizedReturn decimal.Decimal
	SharpeRatio      decimal.Decimal
	MaxDrawdown      Swing
	TotalTrades      int
	WinningTrades    int
	LosingTrades     int
	WinRate          decimal.Decimal
	// ProfitFactor is gross profit over the magnitude of gross loss,
	// capped at 1000 when nothing was lost
	ProfitFactor decimal.Decimal
	GrossProfit  decimal.Decimal
	// GrossLoss is the summed PnL of losing trades, zero or negative
	GrossLoss decimal.Decimal
	AvgWin    decimal.Decimal
	// AvgLoss is zero or negative
	AvgLoss decimal.Decimal
	// LargestWin and LargestLoss report zero when no trade won or lost
	LargestWin  decimal.Decimal
	LargestLoss decimal.Decimal
	// AvgTradeDuration runs from entry order submission to exit fill
	AvgTradeDuration time.Duration
	TotalFees        decimal.Decimal
	RejectedOrders   int64
	ExpiredOrders    int64
}
