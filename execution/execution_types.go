package execution

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thrasher-corp/inkback/execution/costs"
	"github.com/thrasher-corp/inkback/order"
)

var (
	// ErrOrderOutstanding is returned when an order is submitted while
	// another is still pending. The engine rejects rather than queues
	ErrOrderOutstanding = errors.New("an order is already outstanding")
	// ErrNilOrder is returned when a nil order is submitted
	ErrNilOrder = errors.New("received nil order")
	// ErrNilCandle is returned when a nil candle is processed
	ErrNilCandle = errors.New("received nil candle")
	// errStaleCandle guards against filling an order on a candle that
	// does not strictly follow its submission
	errStaleCandle = errors.New("candle does not follow order submission")
)

// Model simulates the exchange for a single run. It holds at most one
// pending order, a submission rests for the remainder of its candle and is
// first eligible to fill on the following one
type Model struct {
	costs   costs.Costs
	pending *order.Order
}

// Fill is the execution of a pending order against a candle
type Fill struct {
	Order *order.Order
	// Price is the executed price after slippage and half the spread
	Price decimal.Decimal
	// Slippage is the signed difference between Price and the raw fill
	// price before costs
	Slippage decimal.Decimal
	// Fee is the commission charged on the executed notional
	Fee    decimal.Decimal
	Amount decimal.Decimal
	Index  int
	Time   time.Time
}
