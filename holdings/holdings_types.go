package holdings

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInitialFundsZero is returned when an account is opened without
	// positive starting cash
	ErrInitialFundsZero = errors.New("initial funds must be positive")
	// ErrNilFill is returned when a nil fill is processed
	ErrNilFill = errors.New("received nil fill")
)

// Direction labels which way a round trip traded
type Direction string

// Directions a trade can take
const (
	// Long profits when price rises
	Long Direction = "LONG"
	// Short profits when price falls
	Short Direction = "SHORT"
)

// Snapshot is one mark to market observation of account equity
type Snapshot struct {
	Time   time.Time
	Equity decimal.Decimal
}

// Trade is a closed round trip, an opening fill matched against the fill
// that reduced or flattened it
type Trade struct {
	Direction      Direction
	EntryOrderTime time.Time
	EntryTime      time.Time
	ExitTime       time.Time
	EntryPrice     decimal.Decimal
	ExitPrice      decimal.Decimal
	Amount         decimal.Decimal
	// PnL is net of the fees charged on both legs
	PnL  decimal.Decimal
	Fees decimal.Decimal
	// Duration runs from the order that opened the position to the fill
	// that closed it, so it includes the candle the entry rested on
	Duration time.Duration
}

// Account owns the financial accounting of one run: cash, the open
// position and the records every statistic is computed from
type Account struct {
	InitialCash decimal.Decimal
	Cash        decimal.Decimal
	// Units is the open position, negative when short
	Units decimal.Decimal
	// EntryPrice is the volume weighted cost basis of the open position
	EntryPrice decimal.Decimal
	// EntryFees accumulates opening fees not yet realised into trades
	EntryFees      decimal.Decimal
	EntryTime      time.Time
	EntryOrderTime time.Time
	TotalFees      decimal.Decimal
	Snapshots      []Snapshot
	Trades         []Trade
	RejectedOrders int64
	ExpiredOrders  int64
}
