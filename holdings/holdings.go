// Package holdings tracks cash, the open position and realised trades for
// a single simulation run
package holdings

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thrasher-corp/inkback/common"
	"github.com/thrasher-corp/inkback/data"
	"github.com/thrasher-corp/inkback/execution"
)

// NewAccount opens an account funded with initialCash
func NewAccount(initialCash decimal.Decimal) (*Account, error) {
	if !initialCash.IsPositive() {
		return nil, fmt.Errorf("%w, received %v", ErrInitialFundsZero, initialCash)
	}
	return &Account{
		InitialCash: initialCash,
		Cash:        initialCash,
	}, nil
}

// ProcessFill applies an executed fill to cash and the open position.
// Fills in the direction of the position extend its cost basis, fills
// against it realise trades and fills that cross through flat close the
// position and open the reverse with the excess
func (a *Account) ProcessFill(f *execution.Fill) error {
	if f == nil || f.Order == nil {
		return ErrNilFill
	}
	notional := f.Price.Mul(f.Amount)
	if f.Order.IsBuy() {
		a.Cash = a.Cash.Sub(notional).Sub(f.Fee)
	} else {
		a.Cash = a.Cash.Add(notional).Sub(f.Fee)
	}
	a.TotalFees = a.TotalFees.Add(f.Fee)

	signed := f.Amount
	if !f.Order.IsBuy() {
		signed = f.Amount.Neg()
	}
	if a.Units.IsZero() || a.Units.Sign() == signed.Sign() {
		a.extend(f, signed)
		return nil
	}

	closing := decimal.Min(f.Amount, a.Units.Abs())
	exitFee := f.Fee.Mul(closing.Div(f.Amount))
	a.realise(f, closing, exitFee)

	remainder := f.Amount.Sub(closing)
	if remainder.IsPositive() {
		// crossed through flat, the excess opens the reverse position
		a.EntryPrice = f.Price
		a.EntryFees = f.Fee.Sub(exitFee)
		a.EntryTime = f.Time
		a.EntryOrderTime = f.Order.SubmittedAt
		a.Units = remainder
		if !f.Order.IsBuy() {
			a.Units = remainder.Neg()
		}
	}
	return nil
}

// extend grows the position in its current direction, rolling the fill
// into the volume weighted cost basis
func (a *Account) extend(f *execution.Fill, signed decimal.Decimal) {
	oldAbs := a.Units.Abs()
	newAbs := oldAbs.Add(f.Amount)
	a.EntryPrice = a.EntryPrice.Mul(oldAbs).
		Add(f.Price.Mul(f.Amount)).
		Div(newAbs)
	a.EntryFees = a.EntryFees.Add(f.Fee)
	if a.Units.IsZero() {
		a.EntryTime = f.Time
		a.EntryOrderTime = f.Order.SubmittedAt
	}
	a.Units = a.Units.Add(signed)
}

// realise books a trade for the closing units of a fill, apportioning
// entry fees by the share of the position closed
func (a *Account) realise(f *execution.Fill, closing, exitFee decimal.Decimal) {
	direction := Long
	gross := f.Price.Sub(a.EntryPrice).Mul(closing)
	if a.Units.IsNegative() {
		direction = Short
		gross = a.EntryPrice.Sub(f.Price).Mul(closing)
	}
	entryFee := a.EntryFees.Mul(closing.Div(a.Units.Abs()))
	fees := entryFee.Add(exitFee)
	a.Trades = append(a.Trades, Trade{
		Direction:      direction,
		EntryOrderTime: a.EntryOrderTime,
		EntryTime:      a.EntryTime,
		ExitTime:       f.Time,
		EntryPrice:     a.EntryPrice,
		ExitPrice:      f.Price,
		Amount:         closing,
		PnL:            gross.Sub(fees),
		Fees:           fees,
		Duration:       f.Time.Sub(a.EntryOrderTime),
	})
	a.EntryFees = a.EntryFees.Sub(entryFee)
	if a.Units.IsNegative() {
		a.Units = a.Units.Add(closing)
	} else {
		a.Units = a.Units.Sub(closing)
	}
	if a.Units.IsZero() {
		a.EntryPrice = decimal.Zero
		a.EntryFees = decimal.Zero
		a.EntryTime = time.Time{}
		a.EntryOrderTime = time.Time{}
	}
}

// UpdateSnapshot marks the account to market at a candle's close and
// appends the observation to the equity curve. Call once per candle
func (a *Account) UpdateSnapshot(c *data.Candle) error {
	if c == nil {
		return common.ErrNilArguments
	}
	a.Snapshots = append(a.Snapshots, Snapshot{
		Time:   c.Time,
		Equity: a.Equity(c.Close),
	})
	return nil
}

// Equity values the account at a price, cash plus the marked position
func (a *Account) Equity(price decimal.Decimal) decimal.Decimal {
	return a.Cash.Add(a.Units.Mul(price))
}

// FinalEquity returns the last marked equity, or initial cash before any
// snapshot exists
func (a *Account) FinalEquity() decimal.Decimal {
	if len(a.Snapshots) == 0 {
		return a.InitialCash
	}
	return a.Snapshots[len(a.Snapshots)-1].Equity
}

// Reset returns the account to its freshly funded state
func (a *Account) Reset() {
	*a = Account{
		InitialCash: a.InitialCash,
		Cash:        a.InitialCash,
	}
}
